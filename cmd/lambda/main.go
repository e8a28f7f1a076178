package main

import (
	"context"
	"log"
	"os"

	"storefront-api/config"
	"storefront-api/internal/app"
	"storefront-api/internal/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"
)

// The serverless entrypoint serves the same router without the analytics
// worker; cached dashboards expire after ANALYTICS_CACHE_TTL instead.
func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to start application", zap.Error(err))
	}
	defer application.Close()

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":" + cfg.Server.Port
		logger.Info("Running local server", zap.String("addr", addr))
		if err := application.Router.Run(addr); err != nil {
			logger.Fatal("Failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(application.Router)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

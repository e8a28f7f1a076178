// Package app wires the storefront's dependencies for both entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/config"
	"storefront-api/internal/api"
	"storefront-api/internal/auth"
	"storefront-api/internal/broker"
	"storefront-api/internal/redisclient"
	"storefront-api/internal/service"
	"storefront-api/internal/store"
	"storefront-api/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds the connections and the router built from a Config
type App struct {
	Config    *config.Config
	Store     *store.Store
	Redis     *redisclient.Client
	Producer  *broker.Producer
	Analytics *service.AnalyticsService
	Router    *gin.Engine
}

// New connects to Postgres, Redis and Kafka and builds the HTTP router
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := util.GetLogger()

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database schema applied")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicOrder))

	eventPublisher := broker.NewEventPublisher(producer)
	notifier := service.NewNotificationService(db, cfg.Business.AdminWhatsApp, cfg.Business.CurrencySymbol)
	analytics := service.NewAnalyticsService(db, redisClient, cfg.Business.AnalyticsCacheTTL)

	services := api.Services{
		Catalog:   service.NewCatalogService(db, db),
		Carts:     service.NewCartService(db),
		Wishlists: service.NewWishlistService(db),
		Orders:    service.NewOrderService(db, db, eventPublisher),
		Checkout: service.NewCheckoutService(db, db, redisClient, redisClient, eventPublisher, notifier, service.CheckoutConfig{
			LockTTL:        cfg.Business.CheckoutLockTTL,
			IdempotencyTTL: cfg.Business.IdempotencyTTL,
		}),
		Notifications: notifier,
		Users:         service.NewUserService(db),
		Analytics:     analytics,
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience), db, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Probes: map[string]api.Pinger{
			"postgres": db,
			"redis":    redisClient,
		},
	})
	handler.SetupRoutes(router)

	logger.Info("Application wired",
		zap.String("env", cfg.Server.Env),
		zap.Strings("cors_origins", cfg.Server.AllowedOrigins))

	return &App{
		Config:    cfg,
		Store:     db,
		Redis:     redisClient,
		Producer:  producer,
		Analytics: analytics,
		Router:    router,
	}, nil
}

// Close releases the connections in reverse order of creation
func (a *App) Close() {
	logger := util.GetLogger()
	if err := a.Producer.Close(); err != nil {
		logger.Warn("Error closing Kafka producer", zap.Error(err))
	}
	if err := a.Redis.Close(); err != nil {
		logger.Warn("Error closing Redis", zap.Error(err))
	}
	if err := a.Store.Close(); err != nil {
		logger.Warn("Error closing database", zap.Error(err))
	}
}

package worker

import (
	"context"

	"storefront-api/internal/broker"
	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"go.uber.org/zap"
)

// DashboardInvalidator drops cached analytics
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context) error
}

// AnalyticsWorker keeps the analytics cache consistent with order events
type AnalyticsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewAnalyticsWorker creates a worker that invalidates the dashboard on every order event
func NewAnalyticsWorker(consumer *broker.Consumer, analytics DashboardInvalidator) *AnalyticsWorker {
	return &AnalyticsWorker{
		consumer:     consumer,
		eventHandler: NewAnalyticsEventHandler(analytics),
		logger:       util.GetLogger(),
	}
}

// NewAnalyticsEventHandler routes every order event type to a dashboard invalidation
func NewAnalyticsEventHandler(analytics DashboardInvalidator) *broker.EventHandler {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		return analytics.InvalidateDashboard(ctx)
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		return analytics.InvalidateDashboard(ctx)
	})
	eventHandler.OnOrderDeleted(func(ctx context.Context, e *models.OrderDeletedEvent) error {
		return analytics.InvalidateDashboard(ctx)
	})

	return eventHandler
}

// Start starts the worker
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting analytics worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AnalyticsWorker) Stop() error {
	w.logger.Info("Stopping analytics worker")
	return w.consumer.Close()
}

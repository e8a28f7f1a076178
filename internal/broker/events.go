package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing order domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an ORDER_PLACED event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatusChanged publishes an ORDER_STATUS_CHANGED event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderDeleted publishes an ORDER_DELETED event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(id uuid.UUID) string {
	return fmt.Sprintf("order-%s", id)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderPlaced        func(context.Context, *models.OrderPlacedEvent) error
	onOrderStatusChanged func(context.Context, *models.OrderStatusChangedEvent) error
	onOrderDeleted       func(context.Context, *models.OrderDeletedEvent) error
	logger               *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPlaced registers a handler for ORDER_PLACED events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnOrderStatusChanged registers a handler for ORDER_STATUS_CHANGED events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnOrderDeleted registers a handler for ORDER_DELETED events
func (eh *EventHandler) OnOrderDeleted(handler func(context.Context, *models.OrderDeletedEvent) error) {
	eh.onOrderDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))
	util.EventsConsumedTotal.WithLabelValues(baseEvent.EventType).Inc()

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeOrderDeleted:
		if eh.onOrderDeleted != nil {
			var event models.OrderDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderDeleted event: %w", err)
			}
			return eh.onOrderDeleted(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}

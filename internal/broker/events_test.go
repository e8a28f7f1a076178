package broker

import (
	"context"
	"encoding/json"
	"testing"

	"storefront-api/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestHandleMessage_RoutesByType(t *testing.T) {
	h := NewEventHandler()
	var placed *models.OrderPlacedEvent
	var changed *models.OrderStatusChangedEvent
	deleted := 0

	h.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		placed = e
		return nil
	})
	h.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		changed = e
		return nil
	})
	h.OnOrderDeleted(func(ctx context.Context, e *models.OrderDeletedEvent) error {
		deleted++
		return nil
	})

	orderID := uuid.New()
	ctx := context.Background()

	require.NoError(t, h.HandleMessage(ctx, message(t, &models.OrderPlacedEvent{
		BaseEvent:   models.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:     orderID,
		OrderNumber: "ORD-1-ABCDEF",
		TotalAmount: decimal.RequireFromString("25.00"),
	})))
	require.NotNil(t, placed)
	assert.Equal(t, orderID, placed.OrderID)
	assert.True(t, decimal.RequireFromString("25").Equal(placed.TotalAmount))

	require.NoError(t, h.HandleMessage(ctx, message(t, &models.OrderStatusChangedEvent{
		BaseEvent:      models.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:        orderID,
		PreviousStatus: models.OrderStatusPending,
		Status:         models.OrderStatusShipped,
	})))
	require.NotNil(t, changed)
	assert.Equal(t, models.OrderStatusShipped, changed.Status)

	require.NoError(t, h.HandleMessage(ctx, message(t, &models.OrderDeletedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeOrderDeleted),
		OrderID:   orderID,
	})))
	assert.Equal(t, 1, deleted)
}

func TestHandleMessage_UnknownAndMalformed(t *testing.T) {
	h := NewEventHandler()

	assert.NoError(t, h.HandleMessage(context.Background(), message(t, models.NewBaseEvent("SOMETHING_ELSE"))))
	assert.Error(t, h.HandleMessage(context.Background(), kafka.Message{Value: []byte("{")}))
}

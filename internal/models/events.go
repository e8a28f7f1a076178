package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a fresh event id and time
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// OrderPlacedEvent published when checkout commits an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       OrderItems      `json:"items"`
}

// OrderStatusChangedEvent published when an admin moves an order to another status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID        uuid.UUID `json:"order_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
}

// OrderDeletedEvent published when an admin removes an order
type OrderDeletedEvent struct {
	BaseEvent
	OrderID uuid.UUID `json:"order_id"`
}

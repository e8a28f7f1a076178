package service

import (
	"context"
	"fmt"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order queries and admin changes. Placing orders is the
// job of CheckoutService.
type OrderService struct {
	orders         OrderRepository
	roles          auth.RoleChecker
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderRepository, roles auth.RoleChecker, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		orders:         orders,
		roles:          roles,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ListOrders returns every order for admins and the caller's own orders otherwise
func (s *OrderService) ListOrders(ctx context.Context, identity *auth.Identity) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	decision, err := auth.RequireRole(ctx, s.roles, identity, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}

	var orders []models.Order
	if decision == auth.Authorized {
		orders, err = s.orders.ListOrders(ctx)
	} else {
		orders, err = s.orders.GetOrdersByUserID(ctx, identity.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", fromStore(err))
	}
	return orders, nil
}

// GetOrder retrieves an order visible to the caller. Orders of other users
// are reported as not found for non-admins.
func (s *OrderService) GetOrder(ctx context.Context, identity *auth.Identity, orderID uuid.UUID) (*models.Order, error) {
	decision, err := auth.RequireRole(ctx, s.roles, identity, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}

	var order *models.Order
	if decision == auth.Authorized {
		order, err = s.orders.GetOrderByID(ctx, orderID)
	} else {
		order, err = s.orders.GetOrderForUser(ctx, orderID, identity.UserID)
	}
	if err != nil {
		return nil, fromStore(err)
	}
	return order, nil
}

// UpdateOrder applies an admin patch and announces status transitions
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, patch models.OrderPatch) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer span.End()

	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, invalid("unknown order status %q", *patch.Status)
	}

	previous, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fromStore(err)
	}

	order, err := s.orders.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		return nil, fromStore(err)
	}

	if order.Status != previous.Status {
		util.OrderStatusChangesTotal.WithLabelValues(order.Status).Inc()
		s.logger.Info("Order status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", previous.Status),
			zap.String("to", order.Status))

		event := &models.OrderStatusChangedEvent{
			BaseEvent:      models.NewBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:        order.ID,
			PreviousStatus: previous.Status,
			Status:         order.Status,
		}
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return order, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return fromStore(err)
	}

	s.logger.Info("Order deleted", zap.String("order_id", orderID.String()))

	event := &models.OrderDeletedEvent{
		BaseEvent: models.NewBaseEvent(models.EventTypeOrderDeleted),
		OrderID:   orderID,
	}
	if err := s.eventPublisher.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}
	return nil
}

func validStatus(status string) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

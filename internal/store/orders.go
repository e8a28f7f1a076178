package store

import (
	"context"

	"storefront-api/internal/models"

	"github.com/google/uuid"
)

const orderColumns = `id, user_id, order_number, items, total_amount, customer_name, customer_email,
	customer_phone, delivery_address, status, created_at, updated_at`

// CreateOrder inserts an order with its item snapshot
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, order_number, items, total_amount, customer_name, customer_email,
		                    customer_phone, delivery_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		order.UserID, order.OrderNumber, order.Items, order.TotalAmount, order.CustomerName,
		order.CustomerEmail, order.CustomerPhone, order.DeliveryAddress, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	return translateError(err)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// GetOrderForUser retrieves an order only if it belongs to the user
func (s *Store) GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// ListOrders returns all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	return orders, translateError(err)
}

// GetOrdersByUserID retrieves orders for a user
func (s *Store) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, translateError(err)
}

// UpdateOrder applies the non-nil fields of the patch
func (s *Store) UpdateOrder(ctx context.Context, id uuid.UUID, patch models.OrderPatch) (*models.Order, error) {
	query := `
		UPDATE orders SET
			status           = COALESCE($2, status),
			customer_name    = COALESCE($3, customer_name),
			customer_email   = COALESCE($4, customer_email),
			customer_phone   = COALESCE($5, customer_phone),
			delivery_address = COALESCE($6, delivery_address),
			updated_at       = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	var order models.Order
	err := s.db.GetContext(ctx, &order, query, id,
		patch.Status, patch.CustomerName, patch.CustomerEmail, patch.CustomerPhone, patch.DeliveryAddress)
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// DeleteOrder removes an order
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

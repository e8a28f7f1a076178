package store

import (
	"context"

	"storefront-api/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const cartColumns = "id, user_id, product_id, quantity, created_at, updated_at"

// ListCartItems returns the user's cart rows joined with their products, newest first
func (s *Store) ListCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT "+cartColumns+" FROM carts WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, translateError(err)
	}

	productIDs := make([]uuid.UUID, len(items))
	for i := range items {
		productIDs[i] = items[i].ProductID
	}
	products, err := s.productIndex(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}
	return items, nil
}

// AddCartItem inserts the (user, product) row or increments its quantity in one statement.
// created reports whether a new row was inserted.
func (s *Store) AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, bool, error) {
	query := `
		INSERT INTO carts (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING ` + cartColumns + `, (xmax = 0) AS inserted`

	var row struct {
		models.CartItem
		Inserted bool `db:"inserted"`
	}
	if err := s.db.GetContext(ctx, &row, query, userID, productID, quantity); err != nil {
		return nil, false, translateError(err)
	}

	item := row.CartItem
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	item.Product = product
	return &item, row.Inserted, nil
}

// UpdateCartItemQuantity overwrites the quantity of one of the user's rows
func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	query := `
		UPDATE carts SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + cartColumns

	var item models.CartItem
	if err := s.db.GetContext(ctx, &item, query, itemID, userID, quantity); err != nil {
		return nil, translateError(err)
	}

	product, err := s.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	item.Product = product
	return &item, nil
}

// RemoveCartItem deletes one of the user's rows; rows of other users are never matched
func (s *Store) RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM carts WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

// ClearCart deletes every cart row of the user and returns how many were removed
func (s *Store) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM carts WHERE user_id = $1", userID)
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

// RemoveCartItems deletes the given rows of the user's cart and returns how many were removed
func (s *Store) RemoveCartItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	ids := make(pq.StringArray, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM carts WHERE user_id = $1 AND id = ANY($2::uuid[])", userID, ids)
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

// productIndex loads products by id into a lookup map
func (s *Store) productIndex(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	products, err := s.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index, nil
}

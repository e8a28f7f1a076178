package store

import (
	"context"
	"errors"

	"storefront-api/internal/models"

	"github.com/google/uuid"
)

const wishlistColumns = "id, user_id, product_id, created_at"

// ListWishlist returns the user's saved products, newest first
func (s *Store) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT "+wishlistColumns+" FROM wishlists WHERE user_id = $1 ORDER BY created_at DESC", userID)
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

// AddWishlistItem saves a product for the user. An existing row is returned untouched
// with created=false.
func (s *Store) AddWishlistItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, bool, error) {
	var item models.WishlistItem
	err := s.db.GetContext(ctx, &item, `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING `+wishlistColumns, userID, productID)

	created := true
	if err != nil {
		if err = translateError(err); !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
		created = false
		err = s.db.GetContext(ctx, &item,
			"SELECT "+wishlistColumns+" FROM wishlists WHERE user_id = $1 AND product_id = $2",
			userID, productID)
		if err != nil {
			return nil, false, translateError(err)
		}
	}

	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	item.Product = product
	return &item, created, nil
}

// RemoveWishlistItem deletes one of the user's rows by id
func (s *Store) RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlists WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

// RemoveWishlistProduct deletes the user's row for a product
func (s *Store) RemoveWishlistProduct(ctx context.Context, userID, productID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res)
}

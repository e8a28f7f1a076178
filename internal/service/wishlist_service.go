package service

import (
	"context"

	"storefront-api/internal/models"

	"github.com/google/uuid"
)

// WishlistService manages the saved products of a user
type WishlistService struct {
	wishlists WishlistRepository
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(wishlists WishlistRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists}
}

// List returns the user's wishlist with products, newest first
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items, err := s.wishlists.ListWishlist(ctx, userID)
	return items, fromStore(err)
}

// Add saves a product; adding it twice returns the existing row with created false
func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, bool, error) {
	item, created, err := s.wishlists.AddWishlistItem(ctx, userID, productID)
	if err != nil {
		return nil, false, fromStore(err)
	}
	return item, created, nil
}

// Remove deletes a wishlist row by its id
func (s *WishlistService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return fromStore(s.wishlists.RemoveWishlistItem(ctx, userID, itemID))
}

// RemoveProduct deletes the wishlist row that saves productID
func (s *WishlistService) RemoveProduct(ctx context.Context, userID, productID uuid.UUID) error {
	return fromStore(s.wishlists.RemoveWishlistProduct(ctx, userID, productID))
}

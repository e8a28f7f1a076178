package service

import (
	"context"
	"fmt"
	"math"

	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService implements the cart mutation contract. Every operation acts on
// the caller's own rows only.
type CartService struct {
	carts  CartRepository
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartRepository) *CartService {
	return &CartService{
		carts:  carts,
		logger: util.GetLogger(),
	}
}

// GetCart returns the user's cart rows with their products
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.carts.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", fromStore(err))
	}
	return items, nil
}

// AddItem increments the quantity of the (user, product) row, creating it when
// absent. created reports whether a new row was inserted.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (item *models.CartItem, created bool, err error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if err := checkQuantity(quantity); err != nil {
		return nil, false, err
	}

	item, created, err = s.carts.AddCartItem(ctx, userID, productID, quantity)
	if err != nil {
		return nil, false, fromStore(err)
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", item.Quantity),
		zap.Bool("created", created))
	return item, created, nil
}

// UpdateQuantity overwrites the quantity of one of the user's rows
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	item, err := s.carts.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, fromStore(err)
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return item, nil
}

// RemoveItem deletes one of the user's rows
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.carts.RemoveCartItem(ctx, userID, itemID); err != nil {
		return fromStore(err)
	}
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// Clear deletes every row of the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.carts.ClearCart(ctx, userID)
	if err != nil {
		return 0, fromStore(err)
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return n, nil
}

// MaxQuantity is the largest quantity a cart row can hold (a Postgres INTEGER)
const MaxQuantity = math.MaxInt32

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return invalid("quantity must be at least 1")
	}
	if quantity > MaxQuantity {
		return invalid("quantity must be at most %d", MaxQuantity)
	}
	return nil
}

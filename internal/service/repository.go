package service

import (
	"context"
	"time"

	"storefront-api/internal/models"

	"github.com/google/uuid"
)

// ProductRepository persists catalog products
type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists catalog categories
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description, image *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CartRepository persists cart rows. Every method is scoped to one user.
type CartRepository interface {
	ListCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, bool, error)
	UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) (int64, error)
	RemoveCartItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (int64, error)
}

// WishlistRepository persists wishlist rows. Every method is scoped to one user.
type WishlistRepository interface {
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, bool, error)
	RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error
	RemoveWishlistProduct(ctx context.Context, userID, productID uuid.UUID) error
}

// OrderRepository persists orders
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch models.OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// UserRepository persists profiles and role assignments
type UserRepository interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, email string, patch models.ProfilePatch) (*models.Profile, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetRolesForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []string) error
}

// SettingsRepository persists key/value store settings
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// AnalyticsRepository runs the aggregate queries behind the admin reports
type AnalyticsRepository interface {
	DashboardOverview(ctx context.Context) (*models.DashboardOverview, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error)
	OrderStatusCounts(ctx context.Context) (map[string]int, error)
	DailyRevenueSince(ctx context.Context, since time.Time) ([]models.DailyRevenue, error)
	ProductStats(ctx context.Context) ([]models.ProductStat, error)
}

// Locker hands out named, expiring locks
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// IdempotencyStore remembers the result of a request by its idempotency key
type IdempotencyStore interface {
	LookupIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	RememberIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cache stores JSON documents with an expiry
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher emits order domain events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

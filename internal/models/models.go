package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices leave the API as JSON numbers, the way the storefront client reads them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price" json:"original_price"`
	Image         string              `db:"image" json:"image"`
	CategoryID    uuid.NullUUID       `db:"category_id" json:"category_id"`
	CategoryName  *string             `db:"category_name" json:"category_name,omitempty"`
	Brand         string              `db:"brand" json:"brand"`
	Rating        float64             `db:"rating" json:"rating"`
	Reviews       int                 `db:"reviews" json:"reviews"`
	InStock       bool                `db:"in_stock" json:"in_stock"`
	StockQuantity int                 `db:"stock_quantity" json:"stock_quantity"`
	Features      pq.StringArray      `db:"features" json:"features"`
	Tags          pq.StringArray      `db:"tags" json:"tags"`
	IsTodaysDeals bool                `db:"is_todays_deals" json:"is_todays_deals"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// ProductPatch carries the fields of a partial product update; nil means unchanged
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Image         *string
	CategoryID    *uuid.UUID
	Brand         *string
	Rating        *float64
	Reviews       *int
	InStock       *bool
	StockQuantity *int
	Features      *pq.StringArray
	Tags          *pq.StringArray
	IsTodaysDeals *bool
}

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	DealsOnly  bool
	Limit      int
	Offset     int
}

// Category groups products
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryPatch carries the fields of a partial category update; nil means unchanged
type CategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
}

// CartItem is one (user, product, quantity) row; unique per user and product
type CartItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Product   *Product  `db:"-" json:"product,omitempty"`
}

// WishlistItem is a saved product for a user
type WishlistItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Product   *Product  `db:"-" json:"product,omitempty"`
}

// OrderItem is the frozen copy of a product at checkout time
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// LineTotal returns price × quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItems is stored as a JSONB array on the order row
type OrderItems []OrderItem

// Total sums the line totals of the snapshot
func (items OrderItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Value implements driver.Valuer
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner
func (items *OrderItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*items = OrderItems{}
		return nil
	default:
		return errors.New("order items: unsupported column type")
	}
	return json.Unmarshal(raw, items)
}

// Order represents a placed order
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	Items           OrderItems      `db:"items" json:"items"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	DeliveryAddress string          `db:"delivery_address" json:"delivery_address"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderPatch carries admin edits to an order; nil means unchanged
type OrderPatch struct {
	Status          *string
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	DeliveryAddress *string
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists every accepted status
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Profile represents a storefront user
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfilePatch carries self-service profile edits
type ProfilePatch struct {
	FullName *string
	Phone    *string
	Address  *string
}

// UserWithRoles is a profile enriched with its role labels
type UserWithRoles struct {
	Profile
	Roles []string `json:"roles"`
}

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Setting is a key/value row of store configuration
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SettingAdminWhatsApp holds the destination number for order invoices
const SettingAdminWhatsApp = "admin_whatsapp"

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"id", "name", "description", "price", "original_price", "image", "category_id", "category_name",
	"brand", "rating", "reviews", "in_stock", "stock_quantity", "features", "tags", "is_todays_deals",
	"created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewStoreWithDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func productRow(id uuid.UUID, name, price string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(productRowColumns).AddRow(
		id.String(), name, "", price, nil, "", nil, nil,
		"", 4.5, 10, true, 3, []byte("{}"), []byte("{}"), false,
		now, now,
	)
}

func TestAddCartItem_IncrementsInOneStatement(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	userID, productID, itemID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO carts.*ON CONFLICT \(user_id, product_id\).*quantity = carts\.quantity \+ EXCLUDED\.quantity`).
		WithArgs(userID, productID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at", "inserted"}).
			AddRow(itemID.String(), userID.String(), productID.String(), 2, now, now, false))
	mock.ExpectQuery(`FROM products p`).
		WithArgs(productID).
		WillReturnRows(productRow(productID, "Lamp", "10.00"))

	item, created, err := s.AddCartItem(ctx, userID, productID, 1)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, itemID, item.ID)
	require.NotNil(t, item.Product)
	assert.True(t, decimal.RequireFromString("10").Equal(item.Product.Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveCartItem_ScopedToOwner(t *testing.T) {
	s, mock := newMockStore(t)

	itemID, otherUser := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM carts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(itemID, otherUser).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RemoveCartItem(context.Background(), otherUser, itemID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearCart(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.ClearCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveCartItems_OnlyGivenRows(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()
	first, second := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1 AND id = ANY\(\$2::uuid\[\]\)`).
		WithArgs(userID, pq.StringArray{first.String(), second.String()}).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.RemoveCartItems(context.Background(), userID, []uuid.UUID{first, second})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.RemoveCartItems(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItem_QuantityOutOfRange(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO carts`).
		WillReturnError(&pq.Error{Code: "22003", Message: "integer out of range"})

	_, _, err := s.AddCartItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	orderID := uuid.New()

	order := &models.Order{
		UserID:      uuid.New(),
		OrderNumber: "ORD-TEST-ABCDEF",
		Items: models.OrderItems{
			{ProductID: uuid.New(), Name: "Lamp", Price: decimal.NewFromInt(10), Quantity: 2},
		},
		TotalAmount:     decimal.NewFromInt(20),
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+1 555 0100",
		DeliveryAddress: "1 Main St",
		Status:          models.OrderStatusPending,
	}

	mock.ExpectQuery(`(?s)INSERT INTO orders.*RETURNING id, created_at, updated_at`).
		WithArgs(order.UserID, order.OrderNumber, sqlmock.AnyArg(), sqlmock.AnyArg(),
			"Ada", "ada@example.com", "+1 555 0100", "1 Main St", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(orderID.String(), now, now))

	require.NoError(t, s.CreateOrder(context.Background(), order))
	assert.Equal(t, orderID, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_DuplicateOrderNumber(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_number_key"})

	err := s.CreateOrder(context.Background(), &models.Order{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetOrderForUser_NotOwner(t *testing.T) {
	s, mock := newMockStore(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM orders WHERE id = \$1 AND user_id = \$2`).
		WithArgs(orderID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetOrderForUser(context.Background(), orderID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRoles_SingleTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_roles WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(userID, "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(userID, "user").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceRoles(context.Background(), userID, []string{"admin", "user"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRoles_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_roles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WillReturnError(&pq.Error{Code: "23514", Message: "violates check constraint"})
	mock.ExpectRollback()

	err := s.ReplaceRoles(context.Background(), userID, []string{"owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_FiltersAndPagination(t *testing.T) {
	s, mock := newMockStore(t)
	categoryID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p WHERE p.category_id = \$1 AND \(p.name ILIKE \$2`).
		WithArgs(categoryID, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)FROM products p.*ORDER BY p.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(categoryID, `%50\%%`, 10, 20).
		WillReturnRows(productRow(uuid.New(), "Half price", "5.00"))

	products, count, err := s.ListProducts(context.Background(), models.ProductFilter{
		CategoryID: &categoryID,
		Search:     "50%",
		Limit:      10,
		Offset:     20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, products, 1)
	assert.Equal(t, "Half price", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_Missing(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteProduct(context.Background(), id), ErrNotFound)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(&pq.Error{Code: "23503"}), ErrInvalidInput)
	assert.ErrorIs(t, translateError(&pq.Error{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, translateError(&pq.Error{Code: "22003", Message: "integer out of range"}), ErrInvalidInput)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}

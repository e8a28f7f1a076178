package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
	"storefront-api/internal/testutil"
	"storefront-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.SetLogger(zap.NewNop())
	os.Exit(m.Run())
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiFixture struct {
	router    *gin.Engine
	mem       *testutil.MemoryStore
	redis     *testutil.MemoryRedis
	publisher *testutil.RecordingPublisher
}

func newAPIFixture(t *testing.T, adminNumber string, probes map[string]Pinger) *apiFixture {
	t.Helper()

	mem := testutil.NewMemoryStore()
	redis := testutil.NewMemoryRedis()
	publisher := &testutil.RecordingPublisher{}
	notifier := service.NewNotificationService(mem, adminNumber, "$")

	services := Services{
		Catalog:       service.NewCatalogService(mem, mem),
		Carts:         service.NewCartService(mem),
		Wishlists:     service.NewWishlistService(mem),
		Orders:        service.NewOrderService(mem, mem, publisher),
		Checkout:      service.NewCheckoutService(mem, mem, redis, redis, publisher, notifier, service.CheckoutConfig{}),
		Notifications: notifier,
		Users:         service.NewUserService(mem),
		Analytics:     service.NewAnalyticsService(mem, redis, time.Minute),
	}

	router := gin.New()
	NewHandler(services, testutil.Provider(), mem, Options{Probes: probes}).SetupRoutes(router)

	return &apiFixture{router: router, mem: mem, redis: redis, publisher: publisher}
}

func (f *apiFixture) do(t *testing.T, method, path string, userID *uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("Authorization", "Bearer "+testutil.Token(*userID))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func checkoutBody() gin.H {
	return gin.H{
		"customer_name":    "Ada Lovelace",
		"customer_email":   "ada@example.com",
		"customer_phone":   "+1 555 0100",
		"delivery_address": "1 Main St",
		"total_amount":     1,
		"items":            []gin.H{{"product_id": uuid.New(), "price": 0.01, "quantity": 1}},
	}
}

func TestAuthentication(t *testing.T) {
	f := newAPIFixture(t, "", nil)

	rec := f.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := uuid.New()
	rec = f.do(t, http.MethodGet, "/api/v1/cart", &user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	user, admin := uuid.New(), uuid.New()
	f.mem.GrantRole(user, models.RoleUser)
	f.mem.GrantRole(admin, models.RoleAdmin)

	rec := f.do(t, http.MethodDelete, "/api/v1/products/"+lamp.ID.String(), &user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, err := f.mem.GetProductByID(context.Background(), lamp.ID)
	require.NoError(t, err)

	rec = f.do(t, http.MethodDelete, "/api/v1/products/"+lamp.ID.String(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/products/"+lamp.ID.String(), &admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/products/"+lamp.ID.String(), &admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/analytics/dashboard", &user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProducts(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	admin := uuid.New()
	f.mem.GrantRole(admin, models.RoleAdmin)

	rec := f.do(t, http.MethodPost, "/api/v1/products", &admin, gin.H{"name": "Lamp", "price": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/products", &admin, gin.H{
		"name":  "Lamp",
		"price": "10.50",
		"tags":  []string{"home"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	decode(t, rec, &created)
	assert.True(t, decimal.RequireFromString("10.50").Equal(created.Price))
	assert.True(t, created.InStock)

	rec = f.do(t, http.MethodGet, "/api/v1/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data  []models.Product `json:"data"`
		Count int              `json:"count"`
	}
	decode(t, rec, &page)
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)

	rec = f.do(t, http.MethodGet, "/api/v1/products/"+uuid.New().String(), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	user, other := uuid.New(), uuid.New()

	rec := f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": lamp.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": lamp.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var item models.CartItem
	decode(t, rec, &item)
	assert.Equal(t, 2, item.Quantity)

	rec = f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/v1/cart/"+item.ID.String(), &user, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/"+item.ID.String(), &other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.mem.CartRows(user), 1)

	rec = f.do(t, http.MethodDelete, "/api/v1/cart", &user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.mem.CartRows(user))
}

func TestWishlistEndpoints(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	user := uuid.New()

	rec := f.do(t, http.MethodPost, "/api/v1/wishlist", &user, gin.H{"product_id": lamp.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/wishlist", &user, gin.H{"product_id": lamp.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "Product already in wishlist", body.Message)

	rec = f.do(t, http.MethodDelete, "/api/v1/wishlist/product/"+lamp.ID.String(), &user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	f := newAPIFixture(t, "+1 555 0199", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	mug := f.mem.SeedProduct("Mug", "5.00")
	user := uuid.New()

	f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": lamp.ID, "quantity": 2})
	f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": mug.ID, "quantity": 1})

	rec := f.do(t, http.MethodPost, "/api/v1/orders", &user, checkoutBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Order       models.Order `json:"order"`
		WhatsAppURL string       `json:"whatsapp_url"`
	}
	decode(t, rec, &body)
	assert.True(t, decimal.RequireFromString("25").Equal(body.Order.TotalAmount))
	assert.Len(t, body.Order.Items, 2)
	assert.Equal(t, models.OrderStatusPending, body.Order.Status)
	assert.True(t, strings.HasPrefix(body.WhatsAppURL, "https://wa.me/15550199?text="))

	rec = f.do(t, http.MethodGet, "/api/v1/cart", &user, nil)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+body.Order.ID.String(), &user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	stranger := uuid.New()
	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+body.Order.ID.String(), &stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/orders", &user, checkoutBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_Rejections(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	user := uuid.New()

	body := checkoutBody()
	delete(body, "delivery_address")
	rec := f.do(t, http.MethodPost, "/api/v1/orders", &user, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": lamp.ID})
	f.redis.Hold("checkout:" + user.String())
	rec = f.do(t, http.MethodPost, "/api/v1/orders", &user, checkoutBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, f.mem.OrderCount())
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	lamp := f.mem.SeedProduct("Lamp", "10.00")
	user := uuid.New()
	f.do(t, http.MethodPost, "/api/v1/cart", &user, gin.H{"product_id": lamp.ID})

	send := func() *httptest.ResponseRecorder {
		raw, _ := json.Marshal(checkoutBody())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testutil.Token(user))
		req.Header.Set(IdempotencyHeader, "retry-1")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send()
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, f.mem.OrderCount())
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	admin := uuid.New()
	f.mem.GrantRole(admin, models.RoleAdmin)
	order := f.mem.SeedOrder(models.Order{UserID: uuid.New(), OrderNumber: "ORD-A-000001", Status: models.OrderStatusPending})

	rec := f.do(t, http.MethodPut, "/api/v1/orders/"+order.ID.String(), &admin, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/v1/orders/"+order.ID.String(), &admin, gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, f.publisher.Changed, 1)
	assert.Equal(t, "shipped", f.publisher.Changed[0].Status)
}

func TestSendInvoice(t *testing.T) {
	user := uuid.New()
	invoice := gin.H{
		"order_number":     "ORD-LK2X1-ABC123",
		"customer_name":    "Ada",
		"customer_email":   "ada@example.com",
		"customer_phone":   "+1 555 0100",
		"delivery_address": "1 Main St",
		"items":            []gin.H{{"name": "Lamp", "quantity": 2, "price": 10}},
		"total_amount":     20,
	}

	unconfigured := newAPIFixture(t, "", nil)
	rec := unconfigured.do(t, http.MethodPost, "/api/v1/notifications/invoice", &user, invoice)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f := newAPIFixture(t, "15550199", nil)
	rec = f.do(t, http.MethodPost, "/api/v1/notifications/invoice", &user, invoice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success     bool   `json:"success"`
		WhatsAppURL string `json:"whatsapp_url"`
		Message     string `json:"message"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Success)
	assert.Contains(t, body.Message, "• Lamp x2 - $20.00")
	assert.True(t, strings.HasPrefix(body.WhatsAppURL, "https://wa.me/15550199?text="))
}

func TestAdminWhatsAppSetting(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	admin := uuid.New()
	f.mem.GrantRole(admin, models.RoleAdmin)

	rec := f.do(t, http.MethodPut, "/api/v1/settings/admin-whatsapp", &admin, gin.H{"number": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/v1/settings/admin-whatsapp", &admin, gin.H{"number": "+62 812 3456 789"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/settings/admin-whatsapp", &admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin_whatsapp":"628123456789"}`, rec.Body.String())
}

func TestUserRoles(t *testing.T) {
	f := newAPIFixture(t, "", nil)
	admin, target := uuid.New(), uuid.New()
	f.mem.GrantRole(admin, models.RoleAdmin)
	f.mem.SeedProfile(target, "target@example.com")

	rec := f.do(t, http.MethodPut, "/api/v1/users/"+target.String()+"/roles", &admin, gin.H{"roles": []string{"owner"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/v1/users/"+target.String()+"/roles", &admin, gin.H{"roles": []string{"user", "admin"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/users/me", &target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.UserWithRoles
	decode(t, rec, &me)
	assert.Equal(t, []string{"admin", "user"}, me.Roles)
}

func TestHealthAndReadiness(t *testing.T) {
	healthy := newAPIFixture(t, "", map[string]Pinger{
		"postgres": pingerFunc(func(context.Context) error { return nil }),
	})
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/ready", nil, nil).Code)

	degraded := newAPIFixture(t, "", map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rec := degraded.do(t, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrEmptyCart))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrCheckoutInProgress))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("connection reset")))
}

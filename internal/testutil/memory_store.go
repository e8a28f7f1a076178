// Package testutil provides in-memory repositories and fakes for tests.
package testutil

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-api/internal/models"
	"storefront-api/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory stand-in for store.Store. It enforces the same
// uniqueness, ownership and foreign key rules and returns the store's errors.
type MemoryStore struct {
	mu sync.Mutex

	products   map[uuid.UUID]models.Product
	categories map[uuid.UUID]models.Category
	carts      map[uuid.UUID]models.CartItem
	wishlists  map[uuid.UUID]models.WishlistItem
	orders     map[uuid.UUID]models.Order
	profiles   map[uuid.UUID]models.Profile
	roles      map[uuid.UUID]map[string]bool
	settings   map[string]string

	clock time.Time

	// Injected failures; ClearCartErr fails ClearCart and RemoveCartItems
	ClearCartErr   error
	CreateOrderErr error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   map[uuid.UUID]models.Product{},
		categories: map[uuid.UUID]models.Category{},
		carts:      map[uuid.UUID]models.CartItem{},
		wishlists:  map[uuid.UUID]models.WishlistItem{},
		orders:     map[uuid.UUID]models.Order{},
		profiles:   map[uuid.UUID]models.Profile{},
		roles:      map[uuid.UUID]map[string]bool{},
		settings:   map[string]string{},
		clock:      time.Now().UTC(),
	}
}

// tick returns a strictly increasing timestamp so "newest first" is deterministic
func (m *MemoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// SeedProduct adds a product with the given name and price
func (m *MemoryStore) SeedProduct(name, price string) models.Product {
	p := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		InStock:  true,
		Features: []string{},
		Tags:     []string{},
	}
	if err := m.CreateProduct(context.Background(), &p); err != nil {
		panic(err)
	}
	return p
}

// SeedProfile adds a profile
func (m *MemoryStore) SeedProfile(userID uuid.UUID, email string) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	p := models.Profile{ID: userID, Email: email, CreatedAt: now, UpdatedAt: now}
	m.profiles[userID] = p
	return p
}

// GrantRole assigns a role to the user
func (m *MemoryStore) GrantRole(userID uuid.UUID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.roles[userID] == nil {
		m.roles[userID] = map[string]bool{}
	}
	m.roles[userID][role] = true
}

// SeedOrder inserts an order as-is, keeping its CreatedAt when set
func (m *MemoryStore) SeedOrder(order models.Order) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = m.tick()
	}
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = order
	return order
}

// CartRows returns the raw cart rows of a user
func (m *MemoryStore) CartRows(userID uuid.UUID) []models.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []models.CartItem
	for _, item := range m.carts {
		if item.UserID == userID {
			rows = append(rows, item)
		}
	}
	return rows
}

// OrderCount returns the number of stored orders
func (m *MemoryStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// Setting returns a stored setting
func (m *MemoryStore) Setting(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	return v, ok
}

// Products

func (m *MemoryStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matches := []models.Product{}
	for _, p := range m.products {
		if filter.CategoryID != nil && (!p.CategoryID.Valid || p.CategoryID.UUID != *filter.CategoryID) {
			continue
		}
		if filter.DealsOnly && !p.IsTodaysDeals {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		matches = append(matches, m.withCategory(p))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })

	count := len(matches)
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(matches) {
			start = len(matches)
		}
		end := start + filter.Limit
		if end > len(matches) {
			end = len(matches)
		}
		matches = matches[start:end]
	}
	return matches, count, nil
}

func (m *MemoryStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = m.withCategory(p)
	return &p, nil
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CategoryID.Valid {
		if _, ok := m.categories[p.CategoryID.UUID]; !ok {
			return store.ErrInvalidInput
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		p.OriginalPrice = decimal.NewNullDecimal(*patch.OriginalPrice)
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.CategoryID != nil {
		if _, ok := m.categories[*patch.CategoryID]; !ok {
			return nil, store.ErrInvalidInput
		}
		p.CategoryID = uuid.NullUUID{UUID: *patch.CategoryID, Valid: true}
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Reviews != nil {
		p.Reviews = *patch.Reviews
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.Features != nil {
		p.Features = *patch.Features
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.IsTodaysDeals != nil {
		p.IsTodaysDeals = *patch.IsTodaysDeals
	}
	p.UpdatedAt = m.tick()
	m.products[id] = p

	p = m.withCategory(p)
	return &p, nil
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	for itemID, item := range m.carts {
		if item.ProductID == id {
			delete(m.carts, itemID)
		}
	}
	for itemID, item := range m.wishlists {
		if item.ProductID == id {
			delete(m.wishlists, itemID)
		}
	}
	return nil
}

// withCategory fills the joined category name; callers hold the lock
func (m *MemoryStore) withCategory(p models.Product) models.Product {
	p.CategoryName = nil
	if p.CategoryID.Valid {
		if c, ok := m.categories[p.CategoryID.UUID]; ok {
			name := c.Name
			p.CategoryName = &name
		}
	}
	return p
}

// productRef returns a copy of the product for embedding; callers hold the lock
func (m *MemoryStore) productRef(id uuid.UUID) *models.Product {
	p, ok := m.products[id]
	if !ok {
		return nil
	}
	p = m.withCategory(p)
	return &p
}

// Categories

func (m *MemoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := []models.Category{}
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MemoryStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == category.Name {
			return store.ErrConflict
		}
	}
	category.ID = uuid.New()
	category.CreatedAt = m.tick()
	category.UpdatedAt = category.CreatedAt
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, id uuid.UUID, name, description, image *string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name != nil {
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}
	if image != nil {
		c.Image = *image
	}
	c.UpdatedAt = m.tick()
	m.categories[id] = c
	return &c, nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.categories, id)
	for pid, p := range m.products {
		if p.CategoryID.Valid && p.CategoryID.UUID == id {
			p.CategoryID = uuid.NullUUID{}
			m.products[pid] = p
		}
	}
	return nil
}

// Cart

func (m *MemoryStore) ListCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []models.CartItem{}
	for _, item := range m.carts {
		if item.UserID == userID {
			item.Product = m.productRef(item.ProductID)
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *MemoryStore) AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return nil, false, store.ErrInvalidInput
	}
	if quantity < 1 {
		return nil, false, store.ErrInvalidInput
	}

	for id, item := range m.carts {
		if item.UserID == userID && item.ProductID == productID {
			if item.Quantity+quantity > math.MaxInt32 {
				return nil, false, store.ErrInvalidInput
			}
			item.Quantity += quantity
			item.UpdatedAt = m.tick()
			m.carts[id] = item
			item.Product = m.productRef(productID)
			return &item, false, nil
		}
	}

	now := m.tick()
	item := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.carts[item.ID] = item
	item.Product = m.productRef(productID)
	return &item, true, nil
}

func (m *MemoryStore) UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.carts[itemID]
	if !ok || item.UserID != userID {
		return nil, store.ErrNotFound
	}
	if quantity < 1 {
		return nil, store.ErrInvalidInput
	}
	item.Quantity = quantity
	item.UpdatedAt = m.tick()
	m.carts[itemID] = item
	item.Product = m.productRef(item.ProductID)
	return &item, nil
}

func (m *MemoryStore) RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.carts[itemID]
	if !ok || item.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.carts, itemID)
	return nil
}

func (m *MemoryStore) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ClearCartErr != nil {
		return 0, m.ClearCartErr
	}
	var n int64
	for id, item := range m.carts {
		if item.UserID == userID {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RemoveCartItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ClearCartErr != nil {
		return 0, m.ClearCartErr
	}
	var n int64
	for _, id := range itemIDs {
		if item, ok := m.carts[id]; ok && item.UserID == userID {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

// Wishlist

func (m *MemoryStore) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []models.WishlistItem{}
	for _, item := range m.wishlists {
		if item.UserID == userID {
			item.Product = m.productRef(item.ProductID)
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *MemoryStore) AddWishlistItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return nil, false, store.ErrInvalidInput
	}
	for _, item := range m.wishlists {
		if item.UserID == userID && item.ProductID == productID {
			item.Product = m.productRef(productID)
			return &item, false, nil
		}
	}

	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: m.tick(),
	}
	m.wishlists[item.ID] = item
	item.Product = m.productRef(productID)
	return &item, true, nil
}

func (m *MemoryStore) RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.wishlists[itemID]
	if !ok || item.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.wishlists, itemID)
	return nil
}

func (m *MemoryStore) RemoveWishlistProduct(ctx context.Context, userID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, item := range m.wishlists {
		if item.UserID == userID && item.ProductID == productID {
			delete(m.wishlists, id)
			return nil
		}
	}
	return store.ErrNotFound
}

// Orders

func (m *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateOrderErr != nil {
		return m.CreateOrderErr
	}
	for _, o := range m.orders {
		if o.OrderNumber == order.OrderNumber {
			return store.ErrConflict
		}
	}

	order.ID = uuid.New()
	order.CreatedAt = m.tick()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = *order
	return nil
}

func (m *MemoryStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *MemoryStore) GetOrderForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return m.filterOrders(func(models.Order) bool { return true }), nil
}

func (m *MemoryStore) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return m.filterOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryStore) filterOrders(keep func(models.Order) bool) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func (m *MemoryStore) UpdateOrder(ctx context.Context, id uuid.UUID, patch models.OrderPatch) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.CustomerName != nil {
		o.CustomerName = *patch.CustomerName
	}
	if patch.CustomerEmail != nil {
		o.CustomerEmail = *patch.CustomerEmail
	}
	if patch.CustomerPhone != nil {
		o.CustomerPhone = *patch.CustomerPhone
	}
	if patch.DeliveryAddress != nil {
		o.DeliveryAddress = *patch.DeliveryAddress
	}
	o.UpdatedAt = m.tick()
	m.orders[id] = o
	return &o, nil
}

func (m *MemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// Users

func (m *MemoryStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profiles := []models.Profile{}
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.After(profiles[j].CreatedAt) })
	return profiles, nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) UpsertProfile(ctx context.Context, userID uuid.UUID, email string, patch models.ProfilePatch) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	p, ok := m.profiles[userID]
	if !ok {
		p = models.Profile{ID: userID, Email: email, CreatedAt: now}
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	p.UpdatedAt = now
	m.profiles[userID] = p
	return &p, nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[userID]; !ok {
		return store.ErrNotFound
	}
	delete(m.profiles, userID)
	delete(m.roles, userID)
	for id, item := range m.carts {
		if item.UserID == userID {
			delete(m.carts, id)
		}
	}
	for id, item := range m.wishlists {
		if item.UserID == userID {
			delete(m.wishlists, id)
		}
	}
	return nil
}

func (m *MemoryStore) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[userID][role], nil
}

func (m *MemoryStore) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedRoles(m.roles[userID]), nil
}

func (m *MemoryStore) GetRolesForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[uuid.UUID][]string, len(userIDs))
	for _, id := range userIDs {
		if roles := sortedRoles(m.roles[id]); len(roles) > 0 {
			result[id] = roles
		}
	}
	return result, nil
}

func (m *MemoryStore) ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := map[string]bool{}
	for _, role := range roles {
		if role != models.RoleAdmin && role != models.RoleUser {
			return store.ErrInvalidInput
		}
		next[role] = true
	}
	m.roles[userID] = next
	return nil
}

func sortedRoles(set map[string]bool) []string {
	roles := []string{}
	for role, ok := range set {
		if ok {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles
}

// Settings

func (m *MemoryStore) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.settings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) PutSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Analytics

func (m *MemoryStore) DashboardOverview(ctx context.Context) (*models.DashboardOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	revenue := decimal.Zero
	for _, o := range m.orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	return &models.DashboardOverview{
		TotalOrders:   len(m.orders),
		TotalRevenue:  revenue,
		TotalProducts: len(m.products),
		TotalUsers:    len(m.profiles),
	}, nil
}

func (m *MemoryStore) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders, _ := m.ListOrders(ctx)
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *MemoryStore) TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := []models.Product{}
	for _, p := range m.products {
		products = append(products, m.withCategory(p))
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (m *MemoryStore) OrderStatusCounts(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[string]int{}
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (m *MemoryStore) DailyRevenueSince(ctx context.Context, since time.Time) ([]models.DailyRevenue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDay := map[string]*models.DailyRevenue{}
	for _, o := range m.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		day := o.CreatedAt.UTC().Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &models.DailyRevenue{Date: day, Revenue: decimal.Zero}
			byDay[day] = point
		}
		point.Revenue = point.Revenue.Add(o.TotalAmount)
		point.Orders++
	}

	points := []models.DailyRevenue{}
	for _, p := range byDay {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (m *MemoryStore) ProductStats(ctx context.Context) ([]models.ProductStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := []models.ProductStat{}
	for _, p := range m.products {
		stats = append(stats, models.ProductStat{
			ID:            p.ID.String(),
			Name:          p.Name,
			Rating:        p.Rating,
			Reviews:       p.Reviews,
			StockQuantity: p.StockQuantity,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Rating > stats[j].Rating })
	return stats, nil
}

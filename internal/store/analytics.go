package store

import (
	"context"
	"time"

	"storefront-api/internal/models"
)

// DashboardOverview returns order, revenue, product and user totals in one round trip
func (s *Store) DashboardOverview(ctx context.Context) (*models.DashboardOverview, error) {
	var overview models.DashboardOverview
	err := s.db.GetContext(ctx, &overview, `
		SELECT
			(SELECT COUNT(*) FROM orders)                      AS total_orders,
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders) AS total_revenue,
			(SELECT COUNT(*) FROM products)                    AS total_products,
			(SELECT COUNT(*) FROM profiles)                    AS total_users`)
	if err != nil {
		return nil, translateError(err)
	}
	return &overview, nil
}

// RecentOrders returns the newest orders
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	return orders, translateError(err)
}

// TopRatedProducts returns the best rated products
func (s *Store) TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		productSelect+" ORDER BY p.rating DESC LIMIT $1", limit)
	return products, translateError(err)
}

// OrderStatusCounts counts orders per status
func (s *Store) OrderStatusCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT status, COUNT(*) AS count FROM orders GROUP BY status")
	if err != nil {
		return nil, translateError(err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DailyRevenueSince sums revenue and order counts per UTC day from since onwards.
// Days without orders are absent.
func (s *Store) DailyRevenueSince(ctx context.Context, since time.Time) ([]models.DailyRevenue, error) {
	points := []models.DailyRevenue{}
	err := s.db.SelectContext(ctx, &points, `
		SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(total_amount), 0) AS revenue,
		       COUNT(*) AS orders
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC`, since)
	return points, translateError(err)
}

// ProductStats lists rating and stock figures for every product, best rated first
func (s *Store) ProductStats(ctx context.Context) ([]models.ProductStat, error) {
	stats := []models.ProductStat{}
	err := s.db.SelectContext(ctx, &stats,
		"SELECT id, name, rating, reviews, stock_quantity FROM products ORDER BY rating DESC")
	return stats, translateError(err)
}

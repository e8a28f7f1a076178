package service

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/models"
	"storefront-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analyticsNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func seedAnalyticsOrders(mem *testutil.MemoryStore) {
	for _, o := range []struct {
		at     time.Time
		total  string
		status string
	}{
		{time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC), "20.00", models.OrderStatusDelivered},
		{time.Date(2026, 3, 4, 0, 30, 0, 0, time.UTC), "7.00", models.OrderStatusPending},
		{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), "100.00", models.OrderStatusPending},
	} {
		mem.SeedOrder(models.Order{
			UserID:      uuid.New(),
			OrderNumber: "ORD-" + o.at.Format("0102") + "-AAAAAA",
			TotalAmount: decimal.RequireFromString(o.total),
			Status:      o.status,
			CreatedAt:   o.at,
		})
	}
}

func newAnalytics(mem *testutil.MemoryStore, cache *testutil.MemoryRedis, ttl time.Duration) *AnalyticsService {
	svc := NewAnalyticsService(mem, cache, ttl)
	svc.now = func() time.Time { return analyticsNow }
	return svc
}

func TestDashboard(t *testing.T) {
	mem := testutil.NewMemoryStore()
	mem.SeedProduct("Lamp", "10.00")
	seedAnalyticsOrders(mem)
	svc := newAnalytics(mem, testutil.NewMemoryRedis(), 0)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, dashboard.Overview.TotalOrders)
	assert.True(t, decimal.RequireFromString("127.00").Equal(dashboard.Overview.TotalRevenue))
	assert.Equal(t, 1, dashboard.Overview.TotalProducts)
	assert.Len(t, dashboard.RecentOrders, 3)
	assert.Len(t, dashboard.TopProducts, 1)
	assert.Equal(t, map[string]int{"pending": 2, "delivered": 1}, dashboard.OrdersByStatus)

	chart := dashboard.RevenueChart
	require.Len(t, chart, 7)
	assert.Equal(t, "2026-03-04", chart[0].Date)
	assert.Equal(t, "2026-03-10", chart[6].Date)
	assert.True(t, decimal.RequireFromString("7.00").Equal(chart[0].Revenue))
	assert.True(t, decimal.RequireFromString("20.00").Equal(chart[5].Revenue))
	assert.Equal(t, 1, chart[5].Orders)
	for _, i := range []int{1, 2, 3, 4, 6} {
		assert.True(t, chart[i].Revenue.IsZero(), "day %s", chart[i].Date)
		assert.Equal(t, 0, chart[i].Orders)
	}
}

func TestDashboard_CachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemoryStore()
	seedAnalyticsOrders(mem)
	cache := testutil.NewMemoryRedis()
	svc := newAnalytics(mem, cache, time.Minute)

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Overview.TotalOrders)
	assert.True(t, cache.HasDoc(DashboardCacheKey))

	seedOrderFor(mem, uuid.New(), "ORD-NEW-AAAAAA")

	cached, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Overview.TotalOrders)
	assert.True(t, first.Overview.TotalRevenue.Equal(cached.Overview.TotalRevenue))

	require.NoError(t, svc.InvalidateDashboard(ctx))
	assert.False(t, cache.HasDoc(DashboardCacheKey))

	fresh, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Overview.TotalOrders)
}

func TestRevenue_Periods(t *testing.T) {
	mem := testutil.NewMemoryStore()
	seedAnalyticsOrders(mem)
	svc := newAnalytics(mem, testutil.NewMemoryRedis(), 0)
	ctx := context.Background()

	week, err := svc.Revenue(ctx, "7days")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-04", "2026-03-09"}, dates(week))

	month, err := svc.Revenue(ctx, "30days")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-01", "2026-03-04", "2026-03-09"}, dates(month))
	assert.True(t, decimal.RequireFromString("100.00").Equal(month[0].Revenue))

	fallback, err := svc.Revenue(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, dates(week), dates(fallback))
}

func TestFillDays(t *testing.T) {
	first := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	points := []models.DailyRevenue{{Date: "2026-02-01", Revenue: decimal.NewFromInt(9), Orders: 2}}

	chart := fillDays(points, first, 3)
	require.Len(t, chart, 3)
	assert.Equal(t, []string{"2026-01-30", "2026-01-31", "2026-02-01"},
		[]string{chart[0].Date, chart[1].Date, chart[2].Date})
	assert.Equal(t, 2, chart[2].Orders)
	assert.True(t, chart[1].Revenue.IsZero())
}

func dates(points []models.RevenuePoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DashboardCacheKey is where the rendered dashboard is cached
	DashboardCacheKey = "analytics:dashboard"

	recentOrdersLimit = 10
	topProductsLimit  = 5
	revenueChartDays  = 7
	dayLayout         = "2006-01-02"
)

// AnalyticsService builds the admin reports
type AnalyticsService struct {
	repo   AnalyticsRepository
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewAnalyticsService creates a new analytics service. A ttl of zero disables caching.
func NewAnalyticsService(repo AnalyticsRepository, cache Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// Dashboard returns the overview, recent orders, top products, status counts
// and a seven day revenue chart
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "AnalyticsService.Dashboard")
	defer span.End()

	if s.ttl > 0 {
		var cached models.Dashboard
		found, err := s.cache.GetJSON(ctx, DashboardCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Failed to read dashboard cache", zap.Error(err))
		}
		if found {
			util.AnalyticsCacheTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		util.AnalyticsCacheTotal.WithLabelValues("miss").Inc()
	}

	dashboard, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, DashboardCacheKey, dashboard, s.ttl); err != nil {
			s.logger.Warn("Failed to cache dashboard", zap.Error(err))
		}
	}
	return dashboard, nil
}

func (s *AnalyticsService) buildDashboard(ctx context.Context) (*models.Dashboard, error) {
	overview, err := s.repo.DashboardOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", fromStore(err))
	}
	recent, err := s.repo.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", fromStore(err))
	}
	top, err := s.repo.TopRatedProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", fromStore(err))
	}
	byStatus, err := s.repo.OrderStatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", fromStore(err))
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(revenueChartDays - 1))
	points, err := s.repo.DailyRevenueSince(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", fromStore(err))
	}

	return &models.Dashboard{
		Overview:       *overview,
		RecentOrders:   recent,
		TopProducts:    top,
		OrdersByStatus: byStatus,
		RevenueChart:   fillDays(points, first, revenueChartDays),
	}, nil
}

// fillDays returns one point per day starting at first, with zero revenue on days without orders
func fillDays(points []models.DailyRevenue, first time.Time, days int) []models.DailyRevenue {
	byDay := make(map[string]models.DailyRevenue, len(points))
	for _, p := range points {
		byDay[p.Date] = p
	}

	chart := make([]models.DailyRevenue, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i).Format(dayLayout)
		if p, ok := byDay[day]; ok {
			chart[i] = p
			continue
		}
		chart[i] = models.DailyRevenue{Date: day, Revenue: decimal.Zero}
	}
	return chart
}

// Revenue returns revenue per day for the period (7days, 30days, 90days or
// 1year; anything else means 7days). Days without orders are omitted.
func (s *AnalyticsService) Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error) {
	now := s.now().UTC()
	var since time.Time
	switch period {
	case "30days":
		since = now.AddDate(0, 0, -30)
	case "90days":
		since = now.AddDate(0, 0, -90)
	case "1year":
		since = now.AddDate(-1, 0, 0)
	default:
		since = now.AddDate(0, 0, -7)
	}

	points, err := s.repo.DailyRevenueSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", fromStore(err))
	}

	revenue := make([]models.RevenuePoint, len(points))
	for i, p := range points {
		revenue[i] = models.RevenuePoint{Date: p.Date, Revenue: p.Revenue}
	}
	return revenue, nil
}

// ProductStats lists rating and stock figures for every product
func (s *AnalyticsService) ProductStats(ctx context.Context) ([]models.ProductStat, error) {
	stats, err := s.repo.ProductStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product stats: %w", fromStore(err))
	}
	return stats, nil
}

// InvalidateDashboard drops the cached dashboard
func (s *AnalyticsService) InvalidateDashboard(ctx context.Context) error {
	if err := s.cache.Delete(ctx, DashboardCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

package models

import "github.com/shopspring/decimal"

// DashboardOverview holds the headline totals of the admin dashboard
type DashboardOverview struct {
	TotalOrders   int             `db:"total_orders" json:"totalOrders"`
	TotalRevenue  decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	TotalProducts int             `db:"total_products" json:"totalProducts"`
	TotalUsers    int             `db:"total_users" json:"totalUsers"`
}

// DailyRevenue is one point of a revenue chart
type DailyRevenue struct {
	Date    string          `db:"day" json:"date"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
	Orders  int             `db:"orders" json:"orders"`
}

// RevenuePoint is one day of the revenue report
type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductStat is the per-product row of the products report
type ProductStat struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Rating        float64 `db:"rating" json:"rating"`
	Reviews       int     `db:"reviews" json:"reviews"`
	StockQuantity int     `db:"stock_quantity" json:"stock_quantity"`
}

// Dashboard is the full admin dashboard payload
type Dashboard struct {
	Overview       DashboardOverview `json:"overview"`
	RecentOrders   []Order           `json:"recentOrders"`
	TopProducts    []Product         `json:"topProducts"`
	OrdersByStatus map[string]int    `json:"ordersByStatus"`
	RevenueChart   []DailyRevenue    `json:"revenueChart"`
}

package domain

import "github.com/shopspring/decimal"

// AdminStats feeds the admin dashboard. TotalOrders, TotalRevenue, ActiveUsers and SalesData
// are placeholder figures; nothing records orders yet.
type AdminStats struct {
	TotalProducts    int              `json:"total_products"`
	TotalOrders      int              `json:"total_orders"`
	TotalRevenue     decimal.Decimal  `json:"total_revenue"`
	ActiveUsers      int              `json:"active_users"`
	LowStockProducts int              `json:"low_stock_products"`
	CategoryStats    map[Category]int `json:"category_stats"`
	SalesData        []int            `json:"sales_data"`
	RecentFeedback   []Feedback       `json:"recent_feedback"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRange bounds a report on order creation time. A range is applied only
// when both ends are set.
type ReportRange struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether both ends are set.
func (r ReportRange) Bounded() bool {
	return r.Start != nil && r.End != nil
}

type ReportSummary struct {
	TotalOrders    int             `json:"total_orders"`
	TotalItemsSold int             `json:"total_items_sold"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

type PopularItem struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
}

type PaymentSummary struct {
	TotalPaidOrders        int                   `json:"total_paid_orders"`
	TotalRevenue           decimal.Decimal       `json:"total_revenue"`
	PaymentMethodBreakdown map[PaymentMethod]int `json:"payment_method_breakdown"`
}

type DailySummary struct {
	Date         string          `json:"date"`
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

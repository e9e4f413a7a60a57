package repositories

import (
	"context"
	"fmt"
	"time"

	"restopos/internal/models"
)

// ReportRepository aggregates sales. Revenue is quantity times the unit price
// captured when each line was ordered.
type ReportRepository interface {
	Summary(ctx context.Context, rng models.ReportRange) (*models.ReportSummary, error)
	PopularItems(ctx context.Context, rng models.ReportRange, limit int) ([]*models.PopularItem, error)
	PaymentSummary(ctx context.Context, rng models.ReportRange) (*models.PaymentSummary, error)
	DailySummary(ctx context.Context, start, end time.Time) ([]*models.DailySummary, error)
}

type reportRepo struct {
	db DB
}

func NewReportRepo(db DB) ReportRepository {
	return &reportRepo{db: db}
}

// bounds returns the range ends as query arguments, both nil unless the range is bounded.
func bounds(rng models.ReportRange) (start, end *time.Time) {
	if !rng.Bounded() {
		return nil, nil
	}
	return rng.Start, rng.End
}

func (r *reportRepo) Summary(ctx context.Context, rng models.ReportRange) (*models.ReportSummary, error) {
	query := `
		SELECT COUNT(DISTINCT o.id), COALESCE(SUM(ol.quantity), 0), COALESCE(SUM(ol.quantity * ol.unit_price), 0)
		FROM orders o
		LEFT JOIN order_lines ol ON ol.order_id = o.id
		WHERE ($1::timestamptz IS NULL OR o.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR o.created_at <= $2)
	`
	start, end := bounds(rng)
	summary := &models.ReportSummary{}
	err := conn(ctx, r.db).QueryRow(ctx, query, start, end).
		Scan(&summary.TotalOrders, &summary.TotalItemsSold, &summary.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to build report summary: %w", err)
	}
	return summary, nil
}

func (r *reportRepo) PopularItems(ctx context.Context, rng models.ReportRange, limit int) ([]*models.PopularItem, error) {
	query := `
		SELECT m.name, SUM(ol.quantity) AS total_quantity
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN menu_items m ON m.id = ol.menu_item_id
		WHERE ($1::timestamptz IS NULL OR o.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR o.created_at <= $2)
		GROUP BY m.name
		ORDER BY total_quantity DESC, m.name
		LIMIT $3
	`
	start, end := bounds(rng)
	rows, err := conn(ctx, r.db).Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular items: %w", err)
	}
	defer rows.Close()

	var items []*models.PopularItem
	for rows.Next() {
		item := &models.PopularItem{}
		if err := rows.Scan(&item.Name, &item.TotalQuantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *reportRepo) PaymentSummary(ctx context.Context, rng models.ReportRange) (*models.PaymentSummary, error) {
	start, end := bounds(rng)
	q := conn(ctx, r.db)

	totals := `
		SELECT COUNT(DISTINCT o.id), COALESCE(SUM(ol.quantity * ol.unit_price), 0)
		FROM orders o
		LEFT JOIN order_lines ol ON ol.order_id = o.id
		WHERE o.is_paid = TRUE
		  AND ($1::timestamptz IS NULL OR o.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR o.created_at <= $2)
	`
	summary := &models.PaymentSummary{PaymentMethodBreakdown: map[models.PaymentMethod]int{}}
	if err := q.QueryRow(ctx, totals, start, end).Scan(&summary.TotalPaidOrders, &summary.TotalRevenue); err != nil {
		return nil, fmt.Errorf("failed to total payments: %w", err)
	}

	breakdown := `
		SELECT payment_method, COUNT(*)
		FROM orders o
		WHERE o.is_paid = TRUE
		  AND ($1::timestamptz IS NULL OR o.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR o.created_at <= $2)
		GROUP BY payment_method
	`
	rows, err := q.Query(ctx, breakdown, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to break down payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var method models.PaymentMethod
		var count int
		if err := rows.Scan(&method, &count); err != nil {
			return nil, err
		}
		summary.PaymentMethodBreakdown[method] = count
	}
	return summary, rows.Err()
}

func (r *reportRepo) DailySummary(ctx context.Context, start, end time.Time) ([]*models.DailySummary, error) {
	query := `
		SELECT to_char(o.created_at::date, 'YYYY-MM-DD') AS order_date,
		       COUNT(DISTINCT o.id),
		       COALESCE(SUM(ol.quantity * ol.unit_price), 0)
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		WHERE o.is_paid = TRUE AND o.created_at >= $1 AND o.created_at <= $2
		GROUP BY order_date
		ORDER BY order_date
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily summary: %w", err)
	}
	defer rows.Close()

	var days []*models.DailySummary
	for rows.Next() {
		day := &models.DailySummary{}
		if err := rows.Scan(&day.Date, &day.TotalOrders, &day.TotalRevenue); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error)
	ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error)
	HasUnpaidForTable(ctx context.Context, tableID uuid.UUID) (bool, error)
	// UpdateStatus moves the order from one status to the next. It reports false
	// when the order is no longer in from, so concurrent advances cannot skip a state.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error)
	// MarkPaid settles a READY, unpaid order. It reports false when that precondition no longer holds.
	MarkPaid(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID, paidAt time.Time) (bool, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, table_id, customer_id, status, is_paid, payment_method, processed_by_id, paid_at, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.TableID, &order.CustomerID, &order.Status, &order.IsPaid,
		&order.PaymentMethod, &order.ProcessedByID, &order.PaidAt, &order.CreatedAt, &order.UpdatedAt)
	return order, err
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, table_id, customer_id, status, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, order.ID, order.TableID, order.CustomerID, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

// ListByStatus returns matching orders oldest first, the order the kitchen works them.
func (r *orderRepo) ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = ANY($1) ORDER BY created_at ASC`
	return r.list(ctx, query, values)
}

func (r *orderRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) HasUnpaidForTable(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE table_id = $1 AND is_paid = FALSE)`
	if err := conn(ctx, r.db).QueryRow(ctx, query, tableID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unpaid orders: %w", err)
	}
	return exists, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepo) MarkPaid(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID, paidAt time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'PAID', is_paid = TRUE, payment_method = $2, processed_by_id = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'READY' AND is_paid = FALSE
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, method, processedBy, paidAt)
	if err != nil {
		return false, fmt.Errorf("failed to record payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

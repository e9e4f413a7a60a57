package repositories

import (
	"context"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
)

type OrderLineRepository interface {
	Create(ctx context.Context, line *models.OrderLine) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLine, error)
	// UpdateNote edits a line note only while its order is RECEIVED. It reports
	// false when the line is gone or the order has moved on.
	UpdateNote(ctx context.Context, orderID, lineID uuid.UUID, note *string) (bool, error)
}

type orderLineRepo struct {
	db DB
}

func NewOrderLineRepo(db DB) OrderLineRepository {
	return &orderLineRepo{db: db}
}

func (r *orderLineRepo) Create(ctx context.Context, line *models.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, menu_item_id, quantity, unit_price, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		line.ID, line.OrderID, line.MenuItemID, line.Quantity, line.UnitPrice, line.Note,
	).Scan(&line.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order line: %w", err)
	}
	return nil
}

func (r *orderLineRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLine, error) {
	query := `
		SELECT ol.id, ol.order_id, ol.menu_item_id, m.name, ol.quantity, ol.unit_price, ol.note, ol.created_at
		FROM order_lines ol
		JOIN menu_items m ON m.id = ol.menu_item_id
		WHERE ol.order_id = $1
		ORDER BY ol.created_at, ol.id
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.OrderLine
	for rows.Next() {
		line := &models.OrderLine{}
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.MenuItemName,
			&line.Quantity, &line.UnitPrice, &line.Note, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *orderLineRepo) UpdateNote(ctx context.Context, orderID, lineID uuid.UUID, note *string) (bool, error) {
	query := `
		UPDATE order_lines ol
		SET note = $3
		FROM orders o
		WHERE ol.id = $1 AND ol.order_id = $2 AND o.id = ol.order_id AND o.status = 'RECEIVED'
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, lineID, orderID, note)
	if err != nil {
		return false, fmt.Errorf("failed to update order line: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

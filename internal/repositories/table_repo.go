package repositories

import (
	"context"
	"errors"
	"fmt"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.DiningTable) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	// LockByID and LockByNumber take a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	LockByNumber(ctx context.Context, number int) (*models.DiningTable, error)
	GetByOccupant(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error)
	List(ctx context.Context) ([]*models.DiningTable, error)
	Update(ctx context.Context, table *models.DiningTable) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tableRepo struct {
	db DB
}

func NewTableRepo(db DB) TableRepository {
	return &tableRepo{db: db}
}

const tableColumns = `id, number, seats, status, current_user_id, created_at, updated_at`

func scanTable(row rowScanner) (*models.DiningTable, error) {
	t := &models.DiningTable{}
	err := row.Scan(&t.ID, &t.Number, &t.Seats, &t.Status, &t.CurrentUserID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *tableRepo) Create(ctx context.Context, table *models.DiningTable) error {
	query := `
		INSERT INTO dining_tables (id, number, seats, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, table.ID, table.Number, table.Seats, table.Status).
		Scan(&table.CreatedAt, &table.UpdatedAt)
	if isUniqueViolation(err) {
		return common.Conflict("table %d already exists", table.Number)
	}
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *tableRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE id = $1`
	return r.get(ctx, query, fmt.Sprintf("table %s not found", id), id)
}

func (r *tableRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, fmt.Sprintf("table %s not found", id), id)
}

func (r *tableRepo) LockByNumber(ctx context.Context, number int) (*models.DiningTable, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE number = $1 FOR UPDATE`
	return r.get(ctx, query, fmt.Sprintf("table %d not found", number), number)
}

func (r *tableRepo) GetByOccupant(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables WHERE current_user_id = $1`
	return r.get(ctx, query, "you are not seated at any table", userID)
}

func (r *tableRepo) get(ctx context.Context, query, notFound string, arg interface{}) (*models.DiningTable, error) {
	table, err := scanTable(conn(ctx, r.db).QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("%s", notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return table, nil
}

func (r *tableRepo) List(ctx context.Context) ([]*models.DiningTable, error) {
	query := `SELECT ` + tableColumns + ` FROM dining_tables ORDER BY number`
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.DiningTable
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (r *tableRepo) Update(ctx context.Context, table *models.DiningTable) error {
	query := `
		UPDATE dining_tables
		SET seats = $2, status = $3, current_user_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, table.ID, table.Seats, table.Status, table.CurrentUserID).
		Scan(&table.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return common.NotFound("table %s not found", table.ID)
	case isUniqueViolation(err):
		return common.Conflict("you are already seated at another table")
	case err != nil:
		return fmt.Errorf("failed to update table: %w", err)
	}
	return nil
}

func (r *tableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM dining_tables WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return common.Conflict("table %s has orders and cannot be deleted", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("table %s not found", id)
	}
	return nil
}

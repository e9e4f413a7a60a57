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

type MenuItemRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context, onlyAvailable bool) ([]*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	// SetAvailability writes the derived availability flag. It is the only writer of is_available.
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	SetImageKey(ctx context.Context, id uuid.UUID, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type menuItemRepo struct {
	db DB
}

func NewMenuItemRepo(db DB) MenuItemRepository {
	return &menuItemRepo{db: db}
}

const menuItemColumns = `id, name, price, img_url, is_available, allergens, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.ImageKey, &item.IsAvailable,
		&item.Allergens, &item.Tags, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// Create inserts a new item. Availability starts true and is corrected by the
// evaluator once a recipe exists.
func (r *menuItemRepo) Create(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, name, price, img_url, is_available, allergens, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, NOW(), NOW())
		RETURNING is_available, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		item.ID, item.Name, item.Price, item.ImageKey, item.Allergens, item.Tags,
	).Scan(&item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *menuItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`
	item, err := scanMenuItem(conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("menu item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

func (r *menuItemRepo) List(ctx context.Context, onlyAvailable bool) ([]*models.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items`
	if onlyAvailable {
		query += ` WHERE is_available = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *menuItemRepo) Update(ctx context.Context, item *models.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $2, price = $3, allergens = $4, tags = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, item.ID, item.Name, item.Price, item.Allergens, item.Tags).Scan(&item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("menu item %s not found", item.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

func (r *menuItemRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `UPDATE menu_items SET is_available = $2, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, available)
	if err != nil {
		return fmt.Errorf("failed to set availability of menu item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("menu item %s not found", id)
	}
	return nil
}

func (r *menuItemRepo) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	query := `UPDATE menu_items SET img_url = $2, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("failed to set image of menu item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("menu item %s not found", id)
	}
	return nil
}

func (r *menuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return common.Conflict("menu item %s is referenced by existing orders", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("menu item %s not found", id)
	}
	return nil
}

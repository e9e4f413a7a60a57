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

// IngredientRepository is the ingredient ledger.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	List(ctx context.Context) ([]*models.Ingredient, error)
	ListLowStock(ctx context.Context) ([]*models.LowStockItem, error)
	Update(ctx context.Context, ingredient *models.Ingredient) error
	// DecrementStock subtracts amount unconditionally and returns the new level.
	DecrementStock(ctx context.Context, id uuid.UUID, amount float64) (float64, error)
	// DecrementStockIfAvailable subtracts amount only when the current level covers it.
	// ok is false when the row is missing or short; nothing is written in that case.
	DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, amount float64) (remaining float64, ok bool, err error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta float64) (float64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ingredientRepo struct {
	db DB
}

func NewIngredientRepo(db DB) IngredientRepository {
	return &ingredientRepo{db: db}
}

func (r *ingredientRepo) Create(ctx context.Context, ingredient *models.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, unit, stock_quantity, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		ingredient.ID, ingredient.Name, ingredient.Unit, ingredient.StockQuantity, ingredient.LowStockThreshold,
	).Scan(&ingredient.CreatedAt, &ingredient.UpdatedAt)
	if isUniqueViolation(err) {
		return common.Conflict("ingredient '%s' already exists", ingredient.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return nil
}

func (r *ingredientRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	ingredient := &models.Ingredient{}
	query := `
		SELECT id, name, unit, stock_quantity, low_stock_threshold, created_at, updated_at
		FROM ingredients
		WHERE id = $1
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&ingredient.ID, &ingredient.Name, &ingredient.Unit, &ingredient.StockQuantity,
		&ingredient.LowStockThreshold, &ingredient.CreatedAt, &ingredient.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFound("ingredient %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return ingredient, nil
}

func (r *ingredientRepo) List(ctx context.Context) ([]*models.Ingredient, error) {
	query := `
		SELECT id, name, unit, stock_quantity, low_stock_threshold, created_at, updated_at
		FROM ingredients
		ORDER BY name
	`
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*models.Ingredient
	for rows.Next() {
		ingredient := &models.Ingredient{}
		if err := rows.Scan(
			&ingredient.ID, &ingredient.Name, &ingredient.Unit, &ingredient.StockQuantity,
			&ingredient.LowStockThreshold, &ingredient.CreatedAt, &ingredient.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, rows.Err()
}

func (r *ingredientRepo) ListLowStock(ctx context.Context) ([]*models.LowStockItem, error) {
	query := `
		SELECT id, name, stock_quantity, low_stock_threshold
		FROM ingredients
		WHERE stock_quantity < low_stock_threshold
		ORDER BY stock_quantity - low_stock_threshold, name
	`
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock ingredients: %w", err)
	}
	defer rows.Close()

	var items []*models.LowStockItem
	for rows.Next() {
		item := &models.LowStockItem{}
		if err := rows.Scan(&item.ID, &item.Name, &item.StockQuantity, &item.LowStockThreshold); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ingredientRepo) Update(ctx context.Context, ingredient *models.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = $2, unit = $3, stock_quantity = $4, low_stock_threshold = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		ingredient.ID, ingredient.Name, ingredient.Unit, ingredient.StockQuantity, ingredient.LowStockThreshold,
	).Scan(&ingredient.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return common.NotFound("ingredient %s not found", ingredient.ID)
	case isUniqueViolation(err):
		return common.Conflict("ingredient '%s' already exists", ingredient.Name)
	case err != nil:
		return fmt.Errorf("failed to update ingredient: %w", err)
	}
	return nil
}

func (r *ingredientRepo) DecrementStock(ctx context.Context, id uuid.UUID, amount float64) (float64, error) {
	query := `
		UPDATE ingredients
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1
		RETURNING stock_quantity
	`
	var remaining float64
	err := conn(ctx, r.db).QueryRow(ctx, query, id, amount).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.NotFound("ingredient %s not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to decrement ingredient %s: %w", id, err)
	}
	return remaining, nil
}

func (r *ingredientRepo) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, amount float64) (float64, bool, error) {
	query := `
		UPDATE ingredients
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity
	`
	var remaining float64
	err := conn(ctx, r.db).QueryRow(ctx, query, id, amount).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to decrement ingredient %s: %w", id, err)
	}
	return remaining, true, nil
}

func (r *ingredientRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta float64) (float64, error) {
	query := `
		UPDATE ingredients
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING stock_quantity
	`
	var level float64
	err := conn(ctx, r.db).QueryRow(ctx, query, id, delta).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.NotFound("ingredient %s not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust ingredient %s: %w", id, err)
	}
	return level, nil
}

func (r *ingredientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ingredients WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("ingredient %s not found", id)
	}
	return nil
}

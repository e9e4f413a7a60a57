package repositories

import (
	"context"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
)

// RecipeRepository maps menu items to the ingredients one unit consumes.
type RecipeRepository interface {
	// ListRequirements returns the recipe lines of every given menu item joined with
	// current stock. Lines whose ingredient row is gone come back with nil stock.
	ListRequirements(ctx context.Context, menuItemIDs []uuid.UUID) ([]*models.RecipeRequirement, error)
	ReplaceForMenuItem(ctx context.Context, menuItemID uuid.UUID, lines []models.RecipeLine) error
	ListMenuItemIDsByIngredients(ctx context.Context, ingredientIDs []uuid.UUID) ([]uuid.UUID, error)
	CountByIngredient(ctx context.Context, ingredientID uuid.UUID) (int, error)
}

type recipeRepo struct {
	db DB
}

func NewRecipeRepo(db DB) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) ListRequirements(ctx context.Context, menuItemIDs []uuid.UUID) ([]*models.RecipeRequirement, error) {
	if len(menuItemIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT rl.menu_item_id, rl.ingredient_id, rl.amount_used, i.name, i.stock_quantity
		FROM recipe_lines rl
		LEFT JOIN ingredients i ON i.id = rl.ingredient_id
		WHERE rl.menu_item_id = ANY($1)
		ORDER BY rl.menu_item_id, rl.ingredient_id
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, menuItemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*models.RecipeRequirement
	for rows.Next() {
		req := &models.RecipeRequirement{}
		if err := rows.Scan(&req.MenuItemID, &req.IngredientID, &req.AmountUsed, &req.IngredientName, &req.StockQuantity); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ReplaceForMenuItem swaps the whole recipe of one menu item. Callers run it inside
// a transaction so the old and new recipe are never mixed.
func (r *recipeRepo) ReplaceForMenuItem(ctx context.Context, menuItemID uuid.UUID, lines []models.RecipeLine) error {
	q := conn(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM recipe_lines WHERE menu_item_id = $1`, menuItemID); err != nil {
		return fmt.Errorf("failed to clear recipe: %w", err)
	}

	query := `
		INSERT INTO recipe_lines (menu_item_id, ingredient_id, amount_used)
		VALUES ($1, $2, $3)
	`
	for _, line := range lines {
		if _, err := q.Exec(ctx, query, menuItemID, line.IngredientID, line.AmountUsed); err != nil {
			return fmt.Errorf("failed to insert recipe line for ingredient %s: %w", line.IngredientID, err)
		}
	}
	return nil
}

func (r *recipeRepo) ListMenuItemIDsByIngredients(ctx context.Context, ingredientIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT menu_item_id
		FROM recipe_lines
		WHERE ingredient_id = ANY($1)
		ORDER BY menu_item_id
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependent menu items: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *recipeRepo) CountByIngredient(ctx context.Context, ingredientID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM recipe_lines WHERE ingredient_id = $1`
	if err := conn(ctx, r.db).QueryRow(ctx, query, ingredientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipe references: %w", err)
	}
	return count, nil
}

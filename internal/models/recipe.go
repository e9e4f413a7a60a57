package models

import (
	"github.com/google/uuid"
)

// RecipeLine says how much of one ingredient a single unit of a menu item consumes.
type RecipeLine struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	AmountUsed   float64   `json:"amount_used" db:"amount_used"`
}

// RecipeRequirement is a recipe line joined with the current ingredient row.
// IngredientName and StockQuantity are nil when the ingredient no longer exists.
type RecipeRequirement struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	IngredientID   uuid.UUID `json:"ingredient_id"`
	AmountUsed     float64   `json:"amount_used"`
	IngredientName *string   `json:"ingredient_name"`
	StockQuantity  *float64  `json:"stock_quantity"`
}

// Missing reports whether the referenced ingredient row is gone.
func (r *RecipeRequirement) Missing() bool {
	return r.StockQuantity == nil
}

// Satisfied reports whether current stock covers one unit of the menu item.
func (r *RecipeRequirement) Satisfied() bool {
	return !r.Missing() && *r.StockQuantity >= r.AmountUsed
}

// Preparable reports whether one unit of a menu item can be made from current stock.
// An item without recipe lines is always preparable; a line whose ingredient is
// missing makes it unpreparable.
func Preparable(reqs []*RecipeRequirement) bool {
	for _, req := range reqs {
		if !req.Satisfied() {
			return false
		}
	}
	return true
}

// RecipeLineInput is one line of a recipe replacement request.
type RecipeLineInput struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	AmountUsed   float64   `json:"amount_used"`
}

// AvailabilityResult is the outcome of evaluating one menu item.
type AvailabilityResult struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Available  bool      `json:"is_available"`
	Changed    bool      `json:"changed"`
}

// Recipe is a menu item's full ingredient list with current stock.
type Recipe struct {
	MenuItemID  uuid.UUID            `json:"menu_item_id"`
	IsAvailable bool                 `json:"is_available"`
	Lines       []*RecipeRequirement `json:"lines"`
}

package services

import (
	"context"
	"strings"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxStockQuantity = 1_000_000

type InventoryService interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	List(ctx context.Context) ([]*models.Ingredient, error)
	ListLowStock(ctx context.Context) ([]*models.LowStockItem, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.IngredientPatch) (*models.Ingredient, error)
	Restock(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inventoryService struct {
	tx             repositories.Transactor
	ingredientRepo repositories.IngredientRepository
	recipeRepo     repositories.RecipeRepository
	availability   AvailabilityService
	cache          caching.CacheService
	logger         *zap.Logger
}

func NewInventoryService(tx repositories.Transactor, ingredientRepo repositories.IngredientRepository, recipeRepo repositories.RecipeRepository, availability AvailabilityService, cache caching.CacheService, logger *zap.Logger) InventoryService {
	return &inventoryService{
		tx:             tx,
		ingredientRepo: ingredientRepo,
		recipeRepo:     recipeRepo,
		availability:   availability,
		cache:          cache,
		logger:         logger,
	}
}

func validateIngredient(ing *models.Ingredient) error {
	ing.Name = strings.TrimSpace(ing.Name)
	ing.Unit = strings.TrimSpace(ing.Unit)
	if err := common.ValidateRequiredString(ing.Name, "name"); err != nil {
		return common.Invalid("name", err.Error())
	}
	if err := common.ValidateRequiredString(ing.Unit, "unit"); err != nil {
		return common.Invalid("unit", err.Error())
	}
	if ing.StockQuantity < 0 || ing.StockQuantity > maxStockQuantity {
		return common.Invalid("stock_quantity", "stock_quantity must be between 0 and 1000000")
	}
	if ing.LowStockThreshold < 0 {
		return common.Invalid("low_stock_threshold", "low_stock_threshold cannot be negative")
	}
	return nil
}

// Create adds an ingredient. No recipe can reference it yet, so no evaluation is needed.
func (s *inventoryService) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := validateIngredient(ingredient); err != nil {
		return err
	}
	ingredient.ID = uuid.New()
	return s.ingredientRepo.Create(ctx, ingredient)
}

func (s *inventoryService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	return s.ingredientRepo.GetByID(ctx, id)
}

func (s *inventoryService) List(ctx context.Context) ([]*models.Ingredient, error) {
	return s.ingredientRepo.List(ctx)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]*models.LowStockItem, error) {
	return s.ingredientRepo.ListLowStock(ctx)
}

// Update applies patch and, when the stock level moved, re-evaluates every menu
// item that uses the ingredient in the same transaction.
func (s *inventoryService) Update(ctx context.Context, id uuid.UUID, patch *models.IngredientPatch) (*models.Ingredient, error) {
	var (
		ingredient *models.Ingredient
		results    []models.AvailabilityResult
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ingredient, err = s.ingredientRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		stockChanged := patch.Apply(ingredient)
		if err := validateIngredient(ingredient); err != nil {
			return err
		}
		if err := s.ingredientRepo.Update(ctx, ingredient); err != nil {
			return err
		}
		if stockChanged {
			results, err = s.availability.EvaluateForIngredients(ctx, []uuid.UUID{id})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, results)
	return ingredient, nil
}

// Restock adds delta, which may be negative for waste or corrections, to the stock level.
func (s *inventoryService) Restock(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error) {
	if delta == 0 {
		return nil, common.Invalid("delta", "delta cannot be zero")
	}

	var (
		ingredient *models.Ingredient
		results    []models.AvailabilityResult
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		remaining, err := s.ingredientRepo.AdjustStock(ctx, id, delta)
		if err != nil {
			return err
		}
		if remaining < 0 {
			return common.Conflict("adjustment would leave stock at %.2f", remaining)
		}
		if results, err = s.availability.EvaluateForIngredients(ctx, []uuid.UUID{id}); err != nil {
			return err
		}
		ingredient, err = s.ingredientRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingredient restocked",
		zap.String("ingredient", ingredient.Name),
		zap.Float64("delta", delta),
		zap.Float64("stock_quantity", ingredient.StockQuantity))
	s.afterCommit(ctx, results)
	return ingredient, nil
}

func (s *inventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ingredient, err := s.ingredientRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		refs, err := s.recipeRepo.CountByIngredient(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return common.Conflict("ingredient '%s' is used by %d recipe line(s)", ingredient.Name, refs)
		}
		return s.ingredientRepo.Delete(ctx, id)
	})
}

// afterCommit drops the cached menu once flag changes are visible to other readers.
func (s *inventoryService) afterCommit(ctx context.Context, results []models.AvailabilityResult) {
	if anyChanged(results) {
		invalidateMenu(ctx, s.cache, s.logger)
	}
}

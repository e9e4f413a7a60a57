package services

import (
	"bytes"
	"context"
	"slices"

	"restopos/internal/caching"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService keeps MenuItem.IsAvailable in step with ingredient stock.
// Every method joins the transaction carried by ctx when there is one; the caller
// then owns invalidating the cached menu after its commit.
type AvailabilityService interface {
	Evaluate(ctx context.Context, menuItemID uuid.UUID) (bool, error)
	EvaluateMany(ctx context.Context, menuItemIDs []uuid.UUID) ([]models.AvailabilityResult, error)
	EvaluateForIngredients(ctx context.Context, ingredientIDs []uuid.UUID) ([]models.AvailabilityResult, error)
}

type availabilityService struct {
	tx         repositories.Transactor
	menuRepo   repositories.MenuItemRepository
	recipeRepo repositories.RecipeRepository
	cache      caching.CacheService
	logger     *zap.Logger
}

func NewAvailabilityService(tx repositories.Transactor, menuRepo repositories.MenuItemRepository, recipeRepo repositories.RecipeRepository, cache caching.CacheService, logger *zap.Logger) AvailabilityService {
	return &availabilityService{
		tx:         tx,
		menuRepo:   menuRepo,
		recipeRepo: recipeRepo,
		cache:      cache,
		logger:     logger,
	}
}

func (s *availabilityService) Evaluate(ctx context.Context, menuItemID uuid.UUID) (bool, error) {
	results, err := s.EvaluateMany(ctx, []uuid.UUID{menuItemID})
	if err != nil {
		return false, err
	}
	return results[0].Available, nil
}

func (s *availabilityService) EvaluateMany(ctx context.Context, menuItemIDs []uuid.UUID) ([]models.AvailabilityResult, error) {
	ids := distinctSorted(menuItemIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	owned := !s.tx.InTx(ctx)
	var results []models.AvailabilityResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		results, err = s.evaluate(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	if owned {
		s.invalidateIfChanged(ctx, results)
	}
	return results, nil
}

func (s *availabilityService) EvaluateForIngredients(ctx context.Context, ingredientIDs []uuid.UUID) ([]models.AvailabilityResult, error) {
	ids := distinctSorted(ingredientIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	owned := !s.tx.InTx(ctx)
	var results []models.AvailabilityResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		menuItemIDs, err := s.recipeRepo.ListMenuItemIDsByIngredients(ctx, ids)
		if err != nil {
			return err
		}
		if len(menuItemIDs) == 0 {
			return nil
		}
		results, err = s.evaluate(ctx, distinctSorted(menuItemIDs))
		return err
	})
	if err != nil {
		return nil, err
	}

	if owned {
		s.invalidateIfChanged(ctx, results)
	}
	return results, nil
}

// evaluate expects distinct ids and must run inside a transaction.
func (s *availabilityService) evaluate(ctx context.Context, ids []uuid.UUID) ([]models.AvailabilityResult, error) {
	reqs, err := s.recipeRepo.ListRequirements(ctx, ids)
	if err != nil {
		return nil, err
	}
	byItem := make(map[uuid.UUID][]*models.RecipeRequirement, len(ids))
	for _, req := range reqs {
		if req.Missing() {
			s.logger.Warn("recipe references a missing ingredient",
				zap.String("menu_item_id", req.MenuItemID.String()),
				zap.String("ingredient_id", req.IngredientID.String()))
		}
		byItem[req.MenuItemID] = append(byItem[req.MenuItemID], req)
	}

	results := make([]models.AvailabilityResult, 0, len(ids))
	for _, id := range ids {
		item, err := s.menuRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		available := models.Preparable(byItem[id])
		changed := available != item.IsAvailable
		if changed {
			if err := s.menuRepo.SetAvailability(ctx, id, available); err != nil {
				return nil, err
			}
			s.logger.Info("menu item availability changed",
				zap.String("menu_item_id", id.String()),
				zap.String("name", item.Name),
				zap.Bool("is_available", available))
		}
		results = append(results, models.AvailabilityResult{MenuItemID: id, Available: available, Changed: changed})
	}
	return results, nil
}

func (s *availabilityService) invalidateIfChanged(ctx context.Context, results []models.AvailabilityResult) {
	if anyChanged(results) {
		invalidateMenu(ctx, s.cache, s.logger)
	}
}

func anyChanged(results []models.AvailabilityResult) bool {
	for _, r := range results {
		if r.Changed {
			return true
		}
	}
	return false
}

func invalidateMenu(ctx context.Context, cache caching.CacheService, logger *zap.Logger) {
	if err := cache.InvalidateMenu(ctx); err != nil {
		logger.Warn("failed to invalidate menu cache", zap.Error(err))
	}
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// distinctSorted returns the distinct ids in ascending byte order, the order
// Postgres uses for uuid, so row locks are always taken in the same sequence.
func distinctSorted(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, compareIDs)
	return slices.Compact(out)
}

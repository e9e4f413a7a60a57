package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxImageSize  = 5 << 20
	imageURLTTL   = time.Hour
	maxPriceValue = 100000
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type MenuService interface {
	Create(ctx context.Context, item *models.MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListAvailable(ctx context.Context) ([]*models.MenuItem, error)
	ListAll(ctx context.Context) ([]*models.MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.MenuItemPatch) (*models.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	SetRecipe(ctx context.Context, id uuid.UUID, lines []models.RecipeLineInput) (*models.Recipe, error)
	UploadImage(ctx context.Context, id uuid.UUID, contentType string, size int64, reader io.Reader) (*models.MenuItem, error)
}

type menuService struct {
	tx             repositories.Transactor
	menuRepo       repositories.MenuItemRepository
	recipeRepo     repositories.RecipeRepository
	ingredientRepo repositories.IngredientRepository
	availability   AvailabilityService
	images         ImageStore
	cache          caching.CacheService
	menuTTL        time.Duration
	logger         *zap.Logger
}

func NewMenuService(
	tx repositories.Transactor,
	menuRepo repositories.MenuItemRepository,
	recipeRepo repositories.RecipeRepository,
	ingredientRepo repositories.IngredientRepository,
	availability AvailabilityService,
	images ImageStore,
	cache caching.CacheService,
	menuTTL time.Duration,
	logger *zap.Logger,
) MenuService {
	return &menuService{
		tx:             tx,
		menuRepo:       menuRepo,
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		availability:   availability,
		images:         images,
		cache:          cache,
		menuTTL:        menuTTL,
		logger:         logger,
	}
}

func validateMenuItem(item *models.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := common.ValidateRequiredString(item.Name, "name"); err != nil {
		return common.Invalid("name", err.Error())
	}
	if len(item.Name) > 255 {
		return common.Invalid("name", "name cannot exceed 255 characters")
	}
	if !item.Price.IsPositive() {
		return common.Invalid("price", "price must be positive")
	}
	if item.Price.GreaterThan(decimal.NewFromInt(maxPriceValue)) {
		return common.Invalid("price", fmt.Sprintf("price cannot exceed %d", maxPriceValue))
	}
	if item.Price.Exponent() < -2 {
		return common.Invalid("price", "price cannot have more than two decimal places")
	}
	if err := common.ValidateOptionalString(item.Allergens, "allergens", 500); err != nil {
		return common.Invalid("allergens", err.Error())
	}
	if err := common.ValidateOptionalString(item.Tags, "tags", 500); err != nil {
		return common.Invalid("tags", err.Error())
	}
	return nil
}

// Create adds a menu item. It has no recipe yet and so starts out available.
func (s *menuService) Create(ctx context.Context, item *models.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	item.ID = uuid.New()
	item.ImageKey = nil
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return err
	}
	invalidateMenu(ctx, s.cache, s.logger)
	return nil
}

func (s *menuService) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachImageURL(ctx, item)
	return item, nil
}

// ListAvailable serves the customer menu, from the cache when possible.
func (s *menuService) ListAvailable(ctx context.Context) ([]*models.MenuItem, error) {
	cached, err := s.cache.GetAvailableMenu(ctx)
	if err != nil {
		s.logger.Warn("failed to read cached menu", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	items, err := s.menuRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		s.attachImageURL(ctx, item)
	}
	if err := s.cache.SetAvailableMenu(ctx, items, s.menuTTL); err != nil {
		s.logger.Warn("failed to cache menu", zap.Error(err))
	}
	return items, nil
}

func (s *menuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	items, err := s.menuRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		s.attachImageURL(ctx, item)
	}
	return items, nil
}

func (s *menuService) Update(ctx context.Context, id uuid.UUID, patch *models.MenuItemPatch) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(item)
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	invalidateMenu(ctx, s.cache, s.logger)
	s.attachImageURL(ctx, item)
	return item, nil
}

func (s *menuService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return err
	}
	if item.ImageKey != nil {
		s.removeImage(ctx, *item.ImageKey)
	}
	invalidateMenu(ctx, s.cache, s.logger)
	return nil
}

func (s *menuService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.recipeRepo.ListRequirements(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return &models.Recipe{MenuItemID: id, IsAvailable: item.IsAvailable, Lines: reqs}, nil
}

func validateRecipeLines(lines []models.RecipeLineInput) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.IngredientID == uuid.Nil {
			return common.Invalid("ingredient_id", "ingredient_id is required")
		}
		if _, dup := seen[line.IngredientID]; dup {
			return common.Invalid("ingredient_id", fmt.Sprintf("ingredient %s appears more than once", line.IngredientID))
		}
		seen[line.IngredientID] = struct{}{}
		if err := common.ValidatePositiveFloat(line.AmountUsed, "amount_used", maxStockQuantity); err != nil {
			return common.Invalid("amount_used", err.Error())
		}
	}
	return nil
}

// SetRecipe replaces the whole recipe and re-evaluates the item against current stock.
// An empty list clears the recipe, which makes the item always available.
func (s *menuService) SetRecipe(ctx context.Context, id uuid.UUID, lines []models.RecipeLineInput) (*models.Recipe, error) {
	if err := validateRecipeLines(lines); err != nil {
		return nil, err
	}

	var (
		recipe  *models.Recipe
		results []models.AvailabilityResult
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.menuRepo.GetByID(ctx, id); err != nil {
			return err
		}
		recipeLines := make([]models.RecipeLine, 0, len(lines))
		for _, line := range lines {
			if _, err := s.ingredientRepo.GetByID(ctx, line.IngredientID); err != nil {
				return err
			}
			recipeLines = append(recipeLines, models.RecipeLine{
				MenuItemID:   id,
				IngredientID: line.IngredientID,
				AmountUsed:   line.AmountUsed,
			})
		}
		if err := s.recipeRepo.ReplaceForMenuItem(ctx, id, recipeLines); err != nil {
			return err
		}

		var err error
		results, err = s.availability.EvaluateMany(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		reqs, err := s.recipeRepo.ListRequirements(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		recipe = &models.Recipe{MenuItemID: id, IsAvailable: results[0].Available, Lines: reqs}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if anyChanged(results) {
		invalidateMenu(ctx, s.cache, s.logger)
	}
	return recipe, nil
}

func (s *menuService) UploadImage(ctx context.Context, id uuid.UUID, contentType string, size int64, reader io.Reader) (*models.MenuItem, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, common.Invalid("image", "image must be JPEG, PNG or WebP")
	}
	if size <= 0 || size > maxImageSize {
		return nil, common.Invalid("image", "image must be between 1 byte and 5 MB")
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := imageKey(id, ext)
	if err := s.images.Upload(ctx, key, reader, size, contentType); err != nil {
		return nil, err
	}
	if err := s.menuRepo.SetImageKey(ctx, id, key); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if item.ImageKey != nil && *item.ImageKey != key {
		s.removeImage(ctx, *item.ImageKey)
	}

	item.ImageKey = &key
	invalidateMenu(ctx, s.cache, s.logger)
	s.attachImageURL(ctx, item)
	return item, nil
}

func imageKey(menuItemID uuid.UUID, ext string) string {
	return filepath.ToSlash(filepath.Join("menu", menuItemID.String(), uuid.NewString()+ext))
}

func (s *menuService) attachImageURL(ctx context.Context, item *models.MenuItem) {
	if item.ImageKey == nil || *item.ImageKey == "" {
		return
	}
	url, err := s.images.PresignedURL(ctx, *item.ImageKey, imageURLTTL)
	if err != nil {
		s.logger.Warn("failed to presign menu image", zap.String("key", *item.ImageKey), zap.Error(err))
		return
	}
	item.ImageURL = url
}

func (s *menuService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete menu image", zap.String("key", key), zap.Error(err))
	}
}

package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// MenuHandlers handles menu and recipe HTTP requests
type MenuHandlers struct {
	menuService services.MenuService
}

func NewMenuHandlers(menuService services.MenuService) *MenuHandlers {
	return &MenuHandlers{menuService: menuService}
}

// CreateMenuItemRequest has no availability field: availability follows stock.
type CreateMenuItemRequest struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Allergens *string         `json:"allergens"`
	Tags      *string         `json:"tags"`
}

type SetRecipeRequest struct {
	Lines []models.RecipeLineInput `json:"lines"`
}

func menuOrEmpty(items []*models.MenuItem) []*models.MenuItem {
	if items == nil {
		return []*models.MenuItem{}
	}
	return items
}

// ListMenu is the public menu of items that can be ordered right now
func (h *MenuHandlers) ListMenu(c echo.Context) error {
	items, err := h.menuService.ListAvailable(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, menuOrEmpty(items))
}

// ListAllMenuItems includes unavailable items for staff
func (h *MenuHandlers) ListAllMenuItems(c echo.Context) error {
	items, err := h.menuService.ListAll(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, menuOrEmpty(items))
}

func (h *MenuHandlers) GetMenuItem(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	item, err := h.menuService.Get(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandlers) CreateMenuItem(c echo.Context) error {
	var req CreateMenuItemRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	item := &models.MenuItem{Name: req.Name, Price: req.Price, Allergens: req.Allergens, Tags: req.Tags}
	if err := h.menuService.Create(c.Request().Context(), item); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuHandlers) UpdateMenuItem(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var patch models.MenuItemPatch
	if err := bind(c, &patch); err != nil {
		return common.SendError(c, err)
	}
	item, err := h.menuService.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandlers) DeleteMenuItem(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.menuService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MenuHandlers) GetRecipe(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	recipe, err := h.menuService.GetRecipe(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// SetRecipe replaces the recipe and answers with the re-evaluated availability
func (h *MenuHandlers) SetRecipe(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req SetRecipeRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	recipe, err := h.menuService.SetRecipe(c.Request().Context(), id, req.Lines)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// UploadImage takes a multipart "image" file
func (h *MenuHandlers) UploadImage(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "multipart field 'image' is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendValidationError(c, "image", "uploaded file could not be read")
	}
	defer src.Close()

	item, err := h.menuService.UploadImage(c.Request().Context(), id, file.Header.Get(echo.HeaderContentType), file.Size, src)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

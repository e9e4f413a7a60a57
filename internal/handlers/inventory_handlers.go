package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers handles ingredient stock HTTP requests
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

type CreateIngredientRequest struct {
	Name              string  `json:"name"`
	Unit              string  `json:"unit"`
	StockQuantity     float64 `json:"stock_quantity"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
}

// RestockRequest carries a signed stock delta
type RestockRequest struct {
	Delta float64 `json:"delta"`
}

func (h *InventoryHandlers) ListIngredients(c echo.Context) error {
	ingredients, err := h.inventoryService.List(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	if ingredients == nil {
		ingredients = []*models.Ingredient{}
	}
	return c.JSON(http.StatusOK, ingredients)
}

func (h *InventoryHandlers) ListLowStock(c echo.Context) error {
	items, err := h.inventoryService.ListLowStock(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.LowStockItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *InventoryHandlers) GetIngredient(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	ingredient, err := h.inventoryService.Get(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}

func (h *InventoryHandlers) CreateIngredient(c echo.Context) error {
	var req CreateIngredientRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	ingredient := &models.Ingredient{
		Name:              req.Name,
		Unit:              req.Unit,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if err := h.inventoryService.Create(c.Request().Context(), ingredient); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, ingredient)
}

func (h *InventoryHandlers) UpdateIngredient(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var patch models.IngredientPatch
	if err := bind(c, &patch); err != nil {
		return common.SendError(c, err)
	}
	ingredient, err := h.inventoryService.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}

func (h *InventoryHandlers) Restock(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req RestockRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	ingredient, err := h.inventoryService.Restock(c.Request().Context(), id, req.Delta)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}

func (h *InventoryHandlers) DeleteIngredient(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.inventoryService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

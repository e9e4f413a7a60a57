package handlers

import (
	"net/http"
	"strconv"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// TableHandlers handles dining table HTTP requests
type TableHandlers struct {
	tableService services.TableService
}

func NewTableHandlers(tableService services.TableService) *TableHandlers {
	return &TableHandlers{tableService: tableService}
}

type CreateTableRequest struct {
	Number int                `json:"number"`
	Seats  int                `json:"seats"`
	Status models.TableStatus `json:"status"`
}

func (h *TableHandlers) ListTables(c echo.Context) error {
	tables, err := h.tableService.List(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	if tables == nil {
		tables = []*models.DiningTable{}
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TableHandlers) GetTable(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	table, err := h.tableService.Get(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *TableHandlers) CreateTable(c echo.Context) error {
	var req CreateTableRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	table := &models.DiningTable{Number: req.Number, Seats: req.Seats, Status: req.Status}
	if err := h.tableService.Create(c.Request().Context(), table); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

func (h *TableHandlers) UpdateTable(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var patch models.TablePatch
	if err := bind(c, &patch); err != nil {
		return common.SendError(c, err)
	}
	table, err := h.tableService.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *TableHandlers) DeleteTable(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.tableService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Sit seats the calling customer at the table with the given number
func (h *TableHandlers) Sit(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		return common.SendValidationError(c, "number", "table number must be a positive integer")
	}
	table, err := h.tableService.Sit(c.Request().Context(), number, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// Leave frees the calling customer's table
func (h *TableHandlers) Leave(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	table, err := h.tableService.Leave(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

package handlers

import (
	"net/http"
	"strings"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders, the kitchen queue and payments
type OrderHandlers struct {
	orderService services.OrderService
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// PlaceOrderRequest is the body of POST /orders
type PlaceOrderRequest struct {
	TableID uuid.UUID               `json:"table_id"`
	Items   []models.OrderLineInput `json:"items"`
}

type PaymentRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

func ordersOrEmpty(orders []*models.Order) []*models.Order {
	if orders == nil {
		return []*models.Order{}
	}
	return orders
}

// PlaceOrder places an order for the calling customer
func (h *OrderHandlers) PlaceOrder(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req PlaceOrderRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	if req.TableID == uuid.Nil {
		return common.SendValidationError(c, "table_id", "table_id is required")
	}

	order, err := h.orderService.PlaceOrder(c.Request().Context(), req.TableID, userID, req.Items)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListMyOrders lists the calling customer's orders
func (h *OrderHandlers) ListMyOrders(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	orders, err := h.orderService.ListMine(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, ordersOrEmpty(orders))
}

func (h *OrderHandlers) GetOrder(c echo.Context) error {
	userID, role, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	order, err := h.orderService.GetOrder(c.Request().Context(), id, userID, role)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderLine edits the note of a line while the order is still RECEIVED
func (h *OrderHandlers) UpdateOrderLine(c echo.Context) error {
	userID, role, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	lineID, err := pathUUID(c, "lineId")
	if err != nil {
		return common.SendError(c, err)
	}
	var patch models.OrderLinePatch
	if err := bind(c, &patch); err != nil {
		return common.SendError(c, err)
	}
	line, err := h.orderService.UpdateLineNote(c.Request().Context(), orderID, lineID, userID, role, patch.Note)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, line)
}

// KitchenQueue lists open orders oldest first. ?status=RECEIVED,PREPARING narrows the queue.
func (h *OrderHandlers) KitchenQueue(c echo.Context) error {
	var statuses []models.OrderStatus
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(part)))
			if !status.Valid() {
				return common.SendValidationError(c, "status", "unknown order status '"+part+"'")
			}
			statuses = append(statuses, status)
		}
	}
	orders, err := h.orderService.KitchenQueue(c.Request().Context(), statuses...)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, ordersOrEmpty(orders))
}

// AdvanceOrder moves an order one step through RECEIVED, PREPARING and READY
func (h *OrderHandlers) AdvanceOrder(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	order, err := h.orderService.AdvanceStatus(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// RecordPayment closes a READY order
func (h *OrderHandlers) RecordPayment(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req PaymentRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	order, err := h.orderService.RecordPayment(c.Request().Context(), id, req.PaymentMethod, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

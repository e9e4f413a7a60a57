package handlers

import (
	"net/http"
	"strconv"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers exposes the recent stock alert feed
type NotificationHandlers struct {
	notifications services.NotificationService
}

func NewNotificationHandlers(notifications services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications}
}

func (h *NotificationHandlers) RecentAlerts(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return common.SendValidationError(c, "limit", "limit must be a positive integer")
		}
		limit = n
	}
	alerts, err := h.notifications.RecentAlerts(c.Request().Context(), limit)
	if err != nil {
		return common.SendError(c, err)
	}
	if alerts == nil {
		alerts = []*models.StockAlert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

package handlers

import (
	"net/http"
	"strconv"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditHandlers lists the stored audit trail for managers
type AuditHandlers struct {
	auditService services.AuditLogsService
}

func NewAuditHandlers(auditService services.AuditLogsService) *AuditHandlers {
	return &AuditHandlers{auditService: auditService}
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.Invalid(name, name+" must be an integer")
	}
	return n, nil
}

func (h *AuditHandlers) ListAuditLogs(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	filters := &models.AuditLogFilters{StartDate: rng.Start, EndDate: rng.End}

	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := common.ValidateUUID(raw, "user_id")
		if err != nil {
			return common.SendValidationError(c, "user_id", err.Error())
		}
		filters.UserID = &userID
	}
	if filters.Limit, err = queryInt(c, "limit"); err != nil {
		return common.SendError(c, err)
	}
	if filters.Offset, err = queryInt(c, "offset"); err != nil {
		return common.SendError(c, err)
	}

	logs, err := h.auditService.List(c.Request().Context(), filters)
	if err != nil {
		return common.SendError(c, err)
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

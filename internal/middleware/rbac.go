package middleware

import (
	"net/http"
	"slices"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after Authenticate.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, common.CreateErrorResponse(string(common.KindForbidden), "Insufficient permissions", nil))
			}
			return next(c)
		}
	}
}

// Staff is shorthand for every role except CUSTOMER.
func Staff() echo.MiddlewareFunc {
	return RequireRole(models.RoleKitchen, models.RoleWaiter, models.RoleManager)
}

package handlers

import (
	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// pathUUID parses the named path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, common.Invalid(name, err.Error())
	}
	return id, nil
}

// caller returns the authenticated user's id and role.
func caller(c echo.Context) (uuid.UUID, models.Role, error) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", common.Unauthorized("Unauthorized access")
	}
	role, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return uuid.Nil, "", common.Unauthorized("Unauthorized access")
	}
	return userID, role, nil
}

// bind decodes the request body into dst.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return common.Invalid("body", "request body is not valid JSON for this endpoint")
	}
	return nil
}

// reportRange reads the optional start_date and end_date query parameters.
func reportRange(c echo.Context) (models.ReportRange, error) {
	start, err := common.ParseDateParam(c.QueryParam("start_date"), "start_date", false)
	if err != nil {
		return models.ReportRange{}, common.Invalid("start_date", err.Error())
	}
	end, err := common.ParseDateParam(c.QueryParam("end_date"), "end_date", true)
	if err != nil {
		return models.ReportRange{}, common.Invalid("end_date", err.Error())
	}
	return models.ReportRange{Start: start, End: end}, nil
}

package common

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(string(KindValidation), "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse(string(KindUnauthorized), "Unauthorized access", nil))
}

// SendError renders err. Business errors keep their kind and message; anything
// else becomes a generic 500 so internals never leak to the caller.
func SendError(c echo.Context, err error) error {
	if appErr, ok := AsAppError(err); ok {
		return c.JSON(appErr.Kind.HTTPStatus(), CreateErrorResponse(string(appErr.Kind), appErr.Message, appErr.Details))
	}
	c.Logger().Errorf("request failed: %v", err)
	return SendServerError(c, "operation could not be completed")
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	if len(idStr) != 36 {
		return uuid.Nil, fmt.Errorf("%s must be exactly 36 characters (including hyphens)", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s contains invalid characters: %v", fieldName, err)
	}
	return id, nil
}

// ValidatePositiveInteger validates positive integer values with upper bounds
func ValidatePositiveInteger(value int, fieldName string, maxValue int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %d", fieldName, maxValue)
	}
	return nil
}

// ValidatePositiveFloat validates positive float values with upper bounds
func ValidatePositiveFloat(value float64, fieldName string, maxValue float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %.2f", fieldName, maxValue)
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateOptionalString trims an optional string field and bounds its length
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		*value = strings.TrimSpace(*value)
		if len(*value) > maxLength {
			return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
		}
	}
	return nil
}

// ParseDateParam parses an optional YYYY-MM-DD query parameter. endOfDay moves the
// result to the last instant of that day so a range includes the whole end date.
func ParseDateParam(value, fieldName string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}
	if endOfDay {
		date = date.Add(24*time.Hour - time.Nanosecond)
	}
	return &date, nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}

	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return fmt.Errorf("date range cannot exceed 10 years")
	}

	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SanitizeHTMLField escapes an optional free-text field and bounds its length
func SanitizeHTMLField(field *string, fieldName string) error {
	if field != nil && *field != "" {
		sanitized := html.EscapeString(*field)
		if len(sanitized) > 1000 {
			return fmt.Errorf("%s content exceeds maximum allowed length", fieldName)
		}
		*field = sanitized
	}
	return nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleFromContext extracts the caller's role from the request context
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}

// WithIdentity stores the caller's identity on ctx.
func WithIdentity(ctx context.Context, userID uuid.UUID, role models.Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

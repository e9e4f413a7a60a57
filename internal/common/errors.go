package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError for the HTTP layer.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
)

// AppError is a business-rule failure with a message that is safe to show the caller.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrNotFound) works on wrapped values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrRateLimited  = &AppError{Kind: KindRateLimited}
)

func NotFound(format string, args ...interface{}) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) error {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func RateLimited(format string, args ...interface{}) error {
	return &AppError{Kind: KindRateLimited, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports a validation failure on one field.
func Invalid(field, message string) error {
	return &AppError{
		Kind:    KindValidation,
		Message: "Validation failed",
		Details: map[string]string{field: message},
	}
}

// AsAppError unwraps err to an AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps an error kind to its response status.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

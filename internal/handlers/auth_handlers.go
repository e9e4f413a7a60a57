package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register opens a customer account and returns an access token
func (h *AuthHandlers) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	token, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, token)
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "email and password are required")
	}
	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// Me returns the authenticated user's account
func (h *AuthHandlers) Me(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUserRequest is the body of a manager creating any account
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// CreateUser lets a manager open staff accounts
func (h *AuthHandlers) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	user, err := h.authService.CreateStaff(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

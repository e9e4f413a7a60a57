package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenIssuer   = "restopos-auth"
	TokenAudience = "restopos-api"
)

// TokenClaims is the payload of an access token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	UserID      string    `json:"user_id"`
	Role        Role      `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}

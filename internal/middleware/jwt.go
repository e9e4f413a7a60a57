package middleware

import (
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const tokenContextKey = "user"

// JWTConfig verifies HS256 tokens signed with secret, or tokens from an external
// issuer when jwks is set.
func JWTConfig(secret string, jwks *keyfunc.JWKS) echojwt.Config {
	cfg := echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
	if jwks != nil {
		cfg.KeyFunc = jwks.Keyfunc
	} else {
		cfg.SigningKey = []byte(secret)
		cfg.SigningMethod = jwt.SigningMethodHS256.Alg()
	}
	return cfg
}

// Authenticate verifies the bearer token and stores the caller's identity on the request context.
func Authenticate(secret string, jwks *keyfunc.JWKS) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(JWTConfig(secret, jwks))
	identity := Identity()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(identity(next))
	}
}

// Identity copies user_id and role from the verified token onto the request context.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*models.TokenClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			sub := claims.UserID
			if sub == "" {
				sub = claims.Subject
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}
			if !claims.Role.Valid() {
				return common.SendUnauthorizedError(c)
			}

			ctx := common.WithIdentity(c.Request().Context(), userID, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// NewJWKS fetches the key set at url and keeps it refreshed in the background.
func NewJWKS(url string, logger *zap.Logger) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to refresh JWKS", zap.String("url", url), zap.Error(err))
		},
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService handles accounts and access tokens
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	CreateStaff(ctx context.Context, email, password string, role models.Role) (*models.User, error)
	EnsureUser(ctx context.Context, email, password string, role models.Role) (*models.User, error)
	ValidateToken(token string) (*models.TokenClaims, error)
}

// AuthOptions tunes token lifetime and the login rate limit.
type AuthOptions struct {
	TokenTTL         time.Duration
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

type authService struct {
	userRepo  repositories.UserRepository
	cache     caching.CacheService
	jwtSecret []byte
	opts      AuthOptions
	cost      int
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, cache caching.CacheService, jwtSecret string, opts AuthOptions, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		opts:      opts,
		cost:      bcrypt.DefaultCost,
		logger:    logger,
		now:       time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.Invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.Invalid("email", "email is not a valid address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return common.Invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > 72 {
		return common.Invalid("password", "password cannot exceed 72 characters")
	}
	return nil
}

func (s *authService) createUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, common.Invalid("role", "role must be one of CUSTOMER, KITCHEN, WAITER, MANAGER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Register creates a customer account and signs it in.
func (s *authService) Register(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, err := s.createUser(ctx, email, password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	key := "login:" + strings.ToLower(strings.TrimSpace(email))

	if s.opts.LoginMaxAttempts > 0 {
		limited, err := s.cache.IsRateLimited(ctx, key, s.opts.LoginMaxAttempts)
		if err != nil {
			s.logger.Warn("failed to check login rate limit", zap.Error(err))
		} else if limited {
			return nil, common.RateLimited("too many login attempts, try again later")
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if err := s.cache.IncrementRateLimit(ctx, key, s.opts.LoginWindow); err != nil {
			s.logger.Warn("failed to record login failure", zap.Error(err))
		}
		return nil, common.Unauthorized("invalid email or password")
	}

	if err := s.cache.ResetRateLimit(ctx, key); err != nil {
		s.logger.Warn("failed to reset login rate limit", zap.Error(err))
	}
	return s.issueToken(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// CreateStaff opens an account with any role; only managers reach it.
func (s *authService) CreateStaff(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	return s.createUser(ctx, email, password, role)
}

// EnsureUser creates the account unless one with that email already exists.
func (s *authService) EnsureUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, normalized)
	if err == nil {
		existing.PasswordHash = ""
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	user, err := s.createUser(ctx, normalized, password, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap account created", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *authService) issueToken(user *models.User) (*models.TokenResponse, error) {
	now := s.now()
	claims := models.TokenClaims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    models.TokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.opts.TokenTTL.Seconds()),
		UserID:      user.ID.String(),
		Role:        user.Role,
		IssuedAt:    now,
	}, nil
}

// ValidateToken parses an access token signed with the shared secret.
func (s *authService) ValidateToken(token string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(models.TokenAudience),
		jwt.WithIssuer(models.TokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-with-enough-entropy-123456"

type AuthServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	users *MockUserRepository
	cache *MockCacheService
	svc   *authService
	clock time.Time
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = new(MockUserRepository)
	s.cache = new(MockCacheService)
	s.clock = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	svc := NewAuthService(s.users, s.cache, testSecret, AuthOptions{
		TokenTTL:         time.Hour,
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
	}, zap.NewNop()).(*authService)
	svc.cost = bcrypt.MinCost
	svc.now = func() time.Time { return s.clock }
	s.svc = svc
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.users.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) storedUser(email, password string, role models.Role) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return &models.User{ID: uuid.New(), Email: email, PasswordHash: string(hash), Role: role}
}

func (s *AuthServiceTestSuite) TestRegister_CreatesCustomer() {
	s.users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ana@example.com" && u.Role == models.RoleCustomer &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")) == nil
	})).Return(nil)

	token, err := s.svc.Register(s.ctx, "  Ana@Example.com ", "hunter2hunter2")
	s.Require().NoError(err)
	s.Equal("Bearer", token.TokenType)
	s.Equal(3600, token.ExpiresIn)
	s.Equal(models.RoleCustomer, token.Role)
}

func (s *AuthServiceTestSuite) TestRegister_Validation() {
	_, err := s.svc.Register(s.ctx, "not-an-email", "hunter2hunter2")
	s.True(errors.Is(err, common.ErrValidation))

	_, err = s.svc.Register(s.ctx, "Ana <ana@example.com>", "hunter2hunter2")
	s.True(errors.Is(err, common.ErrValidation))

	_, err = s.svc.Register(s.ctx, "ana@example.com", "short")
	s.True(errors.Is(err, common.ErrValidation))
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	s.users.On("Create", mock.Anything, mock.Anything).Return(common.Conflict("email already registered"))

	_, err := s.svc.Register(s.ctx, "ana@example.com", "hunter2hunter2")
	s.True(errors.Is(err, common.ErrConflict))
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.storedUser("ana@example.com", "hunter2hunter2", models.RoleWaiter)
	s.cache.On("IsRateLimited", mock.Anything, "login:ana@example.com", 5).Return(false, nil)
	s.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	s.cache.On("ResetRateLimit", mock.Anything, "login:ana@example.com").Return(nil)

	token, err := s.svc.Login(s.ctx, "ANA@example.com", "hunter2hunter2")
	s.Require().NoError(err)

	claims, err := s.svc.ValidateToken(token.AccessToken)
	s.Require().NoError(err)
	s.Equal(user.ID.String(), claims.UserID)
	s.Equal(models.RoleWaiter, claims.Role)
	s.Equal(models.TokenIssuer, claims.Issuer)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordCountsAttempt() {
	user := s.storedUser("ana@example.com", "hunter2hunter2", models.RoleCustomer)
	s.cache.On("IsRateLimited", mock.Anything, "login:ana@example.com", 5).Return(false, nil)
	s.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	s.cache.On("IncrementRateLimit", mock.Anything, "login:ana@example.com", 15*time.Minute).Return(nil)

	_, err := s.svc.Login(s.ctx, "ana@example.com", "wrong-password")
	s.True(errors.Is(err, common.ErrUnauthorized))
	s.Equal("invalid email or password", err.Error())
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmailLooksLikeWrongPassword() {
	s.cache.On("IsRateLimited", mock.Anything, "login:ghost@example.com", 5).Return(false, nil)
	s.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, common.NotFound("user not found"))
	s.cache.On("IncrementRateLimit", mock.Anything, "login:ghost@example.com", 15*time.Minute).Return(nil)

	_, err := s.svc.Login(s.ctx, "ghost@example.com", "whatever123")
	s.True(errors.Is(err, common.ErrUnauthorized))
	s.Equal("invalid email or password", err.Error())
}

func (s *AuthServiceTestSuite) TestLogin_RateLimited() {
	s.cache.On("IsRateLimited", mock.Anything, "login:ana@example.com", 5).Return(true, nil)

	_, err := s.svc.Login(s.ctx, "ana@example.com", "hunter2hunter2")
	s.True(errors.Is(err, common.ErrRateLimited))
	s.users.AssertNotCalled(s.T(), "GetByEmail", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLogin_CacheOutageDoesNotBlockLogin() {
	user := s.storedUser("ana@example.com", "hunter2hunter2", models.RoleCustomer)
	s.cache.On("IsRateLimited", mock.Anything, "login:ana@example.com", 5).Return(false, errors.New("redis down"))
	s.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	s.cache.On("ResetRateLimit", mock.Anything, "login:ana@example.com").Return(errors.New("redis down"))

	_, err := s.svc.Login(s.ctx, "ana@example.com", "hunter2hunter2")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestValidateToken_RejectsForeignTokens() {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, models.TokenClaims{
		UserID: uuid.NewString(),
		Role:   models.RoleManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("some-other-secret"))
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(signed)
	s.Error(err)
}

func (s *AuthServiceTestSuite) TestEnsureUser() {
	existing := s.storedUser("boss@example.com", "hunter2hunter2", models.RoleManager)
	s.users.On("GetByEmail", mock.Anything, "boss@example.com").Return(existing, nil).Once()

	user, err := s.svc.EnsureUser(s.ctx, "boss@example.com", "ignored-password", models.RoleManager)
	s.Require().NoError(err)
	s.Equal(existing.ID, user.ID)
	s.Empty(user.PasswordHash)

	s.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, common.NotFound("user not found")).Once()
	s.users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "new@example.com" && u.Role == models.RoleKitchen
	})).Return(nil).Once()

	created, err := s.svc.EnsureUser(s.ctx, "new@example.com", "hunter2hunter2", models.RoleKitchen)
	s.Require().NoError(err)
	s.Equal(models.RoleKitchen, created.Role)
}

func (s *AuthServiceTestSuite) TestCreateStaff_RejectsUnknownRole() {
	_, err := s.svc.CreateStaff(s.ctx, "chef@example.com", "hunter2hunter2", models.Role("OWNER"))
	s.True(errors.Is(err, common.ErrValidation))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

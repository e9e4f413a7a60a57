package services

import (
	"context"
	"io"
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleRepository) List(ctx context.Context) ([]*models.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Schedule), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetAvailableMenu(ctx context.Context) ([]*models.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*models.MenuItem)
	return items, args.Error(1)
}

func (m *MockCacheService) SetAvailableMenu(ctx context.Context, items []*models.MenuItem, ttl time.Duration) error {
	return m.Called(ctx, items, ttl).Error(0)
}

func (m *MockCacheService) InvalidateMenu(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) GetReport(ctx context.Context, name string, dest interface{}) (bool, error) {
	args := m.Called(ctx, name, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetReport(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, name, value, ttl).Error(0)
}

func (m *MockCacheService) InvalidateReports(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	args := m.Called(ctx, key, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) Close() error {
	return m.Called().Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, reader, size, contentType).Error(0)
}

func (m *MockImageStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockImageStore) EnsureBucket(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	return m.Called(ctx, auditLog).Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	logs, _ := args.Get(0).([]*models.AuditLog)
	return logs, args.Error(1)
}

package services

import (
	"context"
	"testing"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditLogsService_RecordAssignsID(t *testing.T) {
	repo := new(MockAuditLogsRepository)
	svc := NewAuditLogsService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.ID != uuid.Nil && l.Action == "POST /v1/orders"
	})).Return(nil).Once()

	require.NoError(t, svc.Record(context.Background(), &models.AuditLog{Action: "POST /v1/orders", Status: 201}))
	repo.AssertExpectations(t)
}

func TestAuditLogsService_RecordRequiresAction(t *testing.T) {
	repo := new(MockAuditLogsRepository)
	err := NewAuditLogsService(repo).Record(context.Background(), &models.AuditLog{})

	assert.ErrorIs(t, err, common.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditLogsService_ListNormalizesLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: defaultAuditLimit},
		{name: "kept", limit: 20, want: 20},
		{name: "capped", limit: 10000, want: maxAuditLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAuditLogsRepository)
			repo.On("List", mock.Anything, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
				return f.Limit == tt.want
			})).Return([]*models.AuditLog{}, nil).Once()

			_, err := NewAuditLogsService(repo).List(context.Background(), &models.AuditLogFilters{Limit: tt.limit})
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuditLogsService_ListRejectsBadFilters(t *testing.T) {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name    string
		filters models.AuditLogFilters
		field   string
	}{
		{name: "negative limit", filters: models.AuditLogFilters{Limit: -1}, field: "limit"},
		{name: "negative offset", filters: models.AuditLogFilters{Offset: -5}, field: "offset"},
		{name: "inverted range", filters: models.AuditLogFilters{StartDate: &start, EndDate: &end}, field: "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAuditLogsRepository)
			filters := tt.filters
			_, err := NewAuditLogsService(repo).List(context.Background(), &filters)

			appErr, ok := common.AsAppError(err)
			require.True(t, ok)
			assert.Contains(t, appErr.Details, tt.field)
			repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

package services

import (
	"context"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type AuditLogsService interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.Action == "" {
		return common.Invalid("action", "action is required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditLogsService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	switch {
	case filters.Limit < 0:
		return nil, common.Invalid("limit", "limit must be a positive integer")
	case filters.Limit == 0:
		filters.Limit = defaultAuditLimit
	case filters.Limit > maxAuditLimit:
		filters.Limit = maxAuditLimit
	}
	if filters.Offset < 0 {
		return nil, common.Invalid("offset", "offset cannot be negative")
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		if err := common.ValidateDateRange(*filters.StartDate, *filters.EndDate); err != nil {
			return nil, common.Invalid("end_date", err.Error())
		}
	}
	return s.auditLogsRepo.List(ctx, filters)
}

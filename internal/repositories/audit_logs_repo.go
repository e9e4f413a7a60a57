package repositories

import (
	"context"
	"fmt"
	"strings"

	"restopos/internal/models"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, role, action, uri, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		auditLog.ID, auditLog.UserID, string(auditLog.Role), auditLog.Action, auditLog.URI, auditLog.Status, auditLog.Error,
	).Scan(&auditLog.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns matching entries, newest first.
func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	var (
		where []string
		args  []interface{}
	)
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `SELECT id, user_id, role, action, uri, status, error, created_at FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filters.Limit, filters.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		l := &models.AuditLog{}
		var role string
		if err := rows.Scan(&l.ID, &l.UserID, &role, &l.Action, &l.URI, &l.Status, &l.Error, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Role = models.Role(role)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

package repositories

import (
	"context"
	"fmt"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	List(ctx context.Context) ([]*models.Schedule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error)
}

type scheduleRepo struct {
	db DB
}

func NewScheduleRepo(db DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (id, user_id, work_date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		schedule.ID, schedule.UserID, schedule.WorkDate, schedule.StartTime, schedule.EndTime,
	).Scan(&schedule.CreatedAt)
	if isForeignKeyViolation(err) {
		return common.Invalid("user_id", "user does not exist")
	}
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepo) List(ctx context.Context) ([]*models.Schedule, error) {
	query := `
		SELECT id, user_id, work_date, start_time, end_time, created_at
		FROM schedules
		ORDER BY work_date, start_time
	`
	return r.list(ctx, query)
}

func (r *scheduleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error) {
	query := `
		SELECT id, user_id, work_date, start_time, end_time, created_at
		FROM schedules
		WHERE user_id = $1
		ORDER BY work_date, start_time
	`
	return r.list(ctx, query, userID)
}

func (r *scheduleRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Schedule, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		s := &models.Schedule{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.WorkDate, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

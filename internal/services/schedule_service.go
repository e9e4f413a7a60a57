package services

import (
	"context"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
)

const clockLayout = "15:04"

type ScheduleService interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	List(ctx context.Context) ([]*models.Schedule, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error)
}

type scheduleService struct {
	scheduleRepo repositories.ScheduleRepository
}

func NewScheduleService(scheduleRepo repositories.ScheduleRepository) ScheduleService {
	return &scheduleService{scheduleRepo: scheduleRepo}
}

func validateSchedule(schedule *models.Schedule) error {
	if schedule.UserID == uuid.Nil {
		return common.Invalid("user_id", "user_id is required")
	}
	if schedule.WorkDate.IsZero() {
		return common.Invalid("work_date", "work_date is required")
	}
	start, err := time.Parse(clockLayout, schedule.StartTime)
	if err != nil {
		return common.Invalid("start_time", "start_time must be in HH:MM format")
	}
	end, err := time.Parse(clockLayout, schedule.EndTime)
	if err != nil {
		return common.Invalid("end_time", "end_time must be in HH:MM format")
	}
	if !end.After(start) {
		return common.Invalid("end_time", "end_time must be after start_time")
	}
	return nil
}

func (s *scheduleService) Create(ctx context.Context, schedule *models.Schedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}
	schedule.ID = uuid.New()
	return s.scheduleRepo.Create(ctx, schedule)
}

func (s *scheduleService) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.scheduleRepo.List(ctx)
}

func (s *scheduleService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error) {
	return s.scheduleRepo.ListByUser(ctx, userID)
}

package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ScheduleHandlers handles staff shift requests
type ScheduleHandlers struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandlers(scheduleService services.ScheduleService) *ScheduleHandlers {
	return &ScheduleHandlers{scheduleService: scheduleService}
}

// CreateScheduleRequest takes work_date as YYYY-MM-DD and times as HH:MM
type CreateScheduleRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	WorkDate  string    `json:"work_date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

func schedulesOrEmpty(schedules []*models.Schedule) []*models.Schedule {
	if schedules == nil {
		return []*models.Schedule{}
	}
	return schedules
}

func (h *ScheduleHandlers) CreateSchedule(c echo.Context) error {
	var req CreateScheduleRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	workDate, err := common.ParseDateParam(req.WorkDate, "work_date", false)
	if err != nil {
		return common.SendValidationError(c, "work_date", err.Error())
	}
	schedule := &models.Schedule{
		UserID:    req.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if workDate != nil {
		schedule.WorkDate = *workDate
	}
	if err := h.scheduleService.Create(c.Request().Context(), schedule); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandlers) ListSchedules(c echo.Context) error {
	schedules, err := h.scheduleService.List(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, schedulesOrEmpty(schedules))
}

// ListMySchedules lists the calling staff member's shifts
func (h *ScheduleHandlers) ListMySchedules(c echo.Context) error {
	userID, _, err := caller(c)
	if err != nil {
		return common.SendError(c, err)
	}
	schedules, err := h.scheduleService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, schedulesOrEmpty(schedules))
}

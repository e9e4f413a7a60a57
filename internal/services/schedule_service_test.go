package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestScheduleService_Create(t *testing.T) {
	workDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	staff := uuid.New()

	tests := []struct {
		name    string
		in      models.Schedule
		field   string
		wantErr bool
	}{
		{name: "valid", in: models.Schedule{UserID: staff, WorkDate: workDate, StartTime: "09:00", EndTime: "17:30"}},
		{name: "no user", in: models.Schedule{WorkDate: workDate, StartTime: "09:00", EndTime: "17:00"}, field: "user_id", wantErr: true},
		{name: "no date", in: models.Schedule{UserID: staff, StartTime: "09:00", EndTime: "17:00"}, field: "work_date", wantErr: true},
		{name: "bad start", in: models.Schedule{UserID: staff, WorkDate: workDate, StartTime: "9am", EndTime: "17:00"}, field: "start_time", wantErr: true},
		{name: "bad end", in: models.Schedule{UserID: staff, WorkDate: workDate, StartTime: "09:00", EndTime: "25:00"}, field: "end_time", wantErr: true},
		{name: "end before start", in: models.Schedule{UserID: staff, WorkDate: workDate, StartTime: "17:00", EndTime: "09:00"}, field: "end_time", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockScheduleRepository)
			svc := NewScheduleService(repo)
			if !tt.wantErr {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Schedule")).Return(nil)
			}

			in := tt.in
			err := svc.Create(context.Background(), &in)
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, in.ID)
				repo.AssertExpectations(t)
				return
			}
			appErr, ok := common.AsAppError(err)
			if assert.True(t, ok) {
				assert.Contains(t, appErr.Details, tt.field)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestScheduleService_ListForUser(t *testing.T) {
	repo := new(MockScheduleRepository)
	svc := NewScheduleService(repo)
	staff := uuid.New()
	shifts := []*models.Schedule{{ID: uuid.New(), UserID: staff, StartTime: "09:00", EndTime: "17:00"}}
	repo.On("ListByUser", mock.Anything, staff).Return(shifts, nil)
	repo.On("List", mock.Anything).Return([]*models.Schedule(nil), errors.New("connection refused"))

	got, err := svc.ListForUser(context.Background(), staff)
	assert.NoError(t, err)
	assert.Equal(t, shifts, got)

	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

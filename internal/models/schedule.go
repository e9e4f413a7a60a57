package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is one staff shift.
type Schedule struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	WorkDate  time.Time `json:"work_date" db:"work_date"`
	StartTime string    `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string    `json:"end_time" db:"end_time"`     // HH:MM
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

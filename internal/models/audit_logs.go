package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one recorded state-changing request.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Role      Role       `json:"role,omitempty" db:"role"`
	Action    string     `json:"action" db:"action"`
	URI       string     `json:"uri" db:"uri"`
	Status    int        `json:"status" db:"status"`
	Error     string     `json:"error,omitempty" db:"error"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilters narrows an audit log listing. Nil fields match everything.
type AuditLogFilters struct {
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

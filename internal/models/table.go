package models

import (
	"time"

	"github.com/google/uuid"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableClosed    TableStatus = "CLOSED"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableClosed:
		return true
	}
	return false
}

// AcceptsOrders is false for tables that are closed or held for a reservation.
func (s TableStatus) AcceptsOrders() bool {
	return s != TableClosed && s != TableReserved
}

// DiningTable is a physical table and its current occupant, if any.
type DiningTable struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Number        int         `json:"number" db:"number"`
	Seats         int         `json:"seats" db:"seats"`
	Status        TableStatus `json:"status" db:"status"`
	CurrentUserID *uuid.UUID  `json:"current_user_id" db:"current_user_id"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// TablePatch carries the optional fields of a table update.
type TablePatch struct {
	Seats  *int         `json:"seats,omitempty"`
	Status *TableStatus `json:"status,omitempty"`
}

// Apply copies every non-nil field onto t.
func (p *TablePatch) Apply(t *DiningTable) {
	if p.Seats != nil {
		t.Seats = *p.Seats
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the staff/customer role carried in the access token.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleKitchen  Role = "KITCHEN"
	RoleWaiter   Role = "WAITER"
	RoleManager  Role = "MANAGER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleKitchen, RoleWaiter, RoleManager:
		return true
	}
	return false
}

// IsStaff is true for every role that works the floor or the kitchen.
func (r Role) IsStaff() bool {
	return r == RoleKitchen || r == RoleWaiter || r == RoleManager
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderReceived  OrderStatus = "RECEIVED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderPaid      OrderStatus = "PAID"
)

var orderFlow = map[OrderStatus]OrderStatus{
	OrderReceived:  OrderPreparing,
	OrderPreparing: OrderReady,
	OrderReady:     OrderPaid,
}

// Next returns the single state that may follow s. ok is false for PAID and unknown states.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	next, ok = orderFlow[s]
	return next, ok
}

func (s OrderStatus) Valid() bool {
	return s == OrderPaid || orderFlow[s] != ""
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCredit || m == PaymentOnline
}

type Order struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	TableID       uuid.UUID      `json:"table_id" db:"table_id"`
	CustomerID    *uuid.UUID     `json:"customer_id" db:"customer_id"`
	Status        OrderStatus    `json:"status" db:"status"`
	IsPaid        bool           `json:"is_paid" db:"is_paid"`
	PaymentMethod *PaymentMethod `json:"payment_method" db:"payment_method"`
	ProcessedByID *uuid.UUID     `json:"processed_by_id" db:"processed_by_id"`
	PaidAt        *time.Time     `json:"paid_at" db:"paid_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	Lines         []*OrderLine   `json:"lines,omitempty" db:"-"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one menu item of an order. UnitPrice is the menu price when the order
// was placed. MenuItemName is filled by joins for display.
type OrderLine struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrderID      uuid.UUID       `json:"order_id" db:"order_id"`
	MenuItemID   uuid.UUID       `json:"menu_item_id" db:"menu_item_id"`
	MenuItemName string          `json:"name,omitempty" db:"-"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Note         *string         `json:"note" db:"note"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// OrderLineInput is a requested line of a new order.
type OrderLineInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Note       *string   `json:"note,omitempty"`
}

// OrderLinePatch edits a line while the order is still RECEIVED.
type OrderLinePatch struct {
	Note *string `json:"note"`
}

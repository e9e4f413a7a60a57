package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a dish or drink on the menu. IsAvailable is derived from ingredient
// stock and is only ever written by the availability evaluator.
type MenuItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageKey    *string         `json:"-" db:"img_url"`
	ImageURL    string          `json:"img_url,omitempty" db:"-"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	Allergens   *string         `json:"allergens" db:"allergens"`
	Tags        *string         `json:"tags" db:"tags"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// MenuItemPatch carries the optional fields of a menu item update.
// Availability is deliberately absent: it follows stock.
type MenuItemPatch struct {
	Name      *string          `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Allergens *string          `json:"allergens,omitempty"`
	Tags      *string          `json:"tags,omitempty"`
}

// Apply copies every non-nil field onto item.
func (p *MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Allergens != nil {
		item.Allergens = p.Allergens
	}
	if p.Tags != nil {
		item.Tags = p.Tags
	}
}

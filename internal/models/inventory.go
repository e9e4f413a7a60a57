package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient is a stocked raw material consumed by recipes.
type Ingredient struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Unit              string    `json:"unit" db:"unit"`
	StockQuantity     float64   `json:"stock_quantity" db:"stock_quantity"`
	LowStockThreshold float64   `json:"low_stock_threshold" db:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// IsLow reports whether stock has fallen under the alert threshold.
func (i *Ingredient) IsLow() bool {
	return i.StockQuantity < i.LowStockThreshold
}

// IngredientPatch carries the optional fields of an ingredient update.
type IngredientPatch struct {
	Name              *string  `json:"name,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	StockQuantity     *float64 `json:"stock_quantity,omitempty"`
	LowStockThreshold *float64 `json:"low_stock_threshold,omitempty"`
}

// Apply copies every non-nil field onto ing and reports whether the stock level moved.
func (p *IngredientPatch) Apply(ing *Ingredient) (stockChanged bool) {
	if p.Name != nil {
		ing.Name = *p.Name
	}
	if p.Unit != nil {
		ing.Unit = *p.Unit
	}
	if p.LowStockThreshold != nil {
		ing.LowStockThreshold = *p.LowStockThreshold
	}
	if p.StockQuantity != nil && *p.StockQuantity != ing.StockQuantity {
		ing.StockQuantity = *p.StockQuantity
		stockChanged = true
	}
	return stockChanged
}

// LowStockItem is one row of the low-stock report.
type LowStockItem struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	StockQuantity     float64   `json:"stock_quantity"`
	LowStockThreshold float64   `json:"low_stock_threshold"`
}

// StockPolicy decides what happens when an order needs more of an ingredient than is in stock.
type StockPolicy string

const (
	// StockPolicyReject fails the order and leaves stock untouched.
	StockPolicyReject StockPolicy = "reject"
	// StockPolicyAllowNegative lets stock go below zero as an oversold signal.
	StockPolicyAllowNegative StockPolicy = "allow_negative"
)

func (p StockPolicy) Valid() bool {
	return p == StockPolicyReject || p == StockPolicyAllowNegative
}

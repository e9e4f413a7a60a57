package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAlert is published when an ingredient first drops under its threshold.
type StockAlert struct {
	ID             uuid.UUID `json:"id"`
	IngredientID   uuid.UUID `json:"ingredient_id"`
	IngredientName string    `json:"ingredient_name"`
	StockQuantity  float64   `json:"stock_quantity"`
	Threshold      float64   `json:"low_stock_threshold"`
	RaisedAt       time.Time `json:"raised_at"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordEntryRequest body para POST /api/entries.
type RecordEntryRequest struct {
	Supplier  string           `json:"supplier" validate:"required,max=200"`
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Note      string           `json:"note" validate:"omitempty,max=500"`
}

// RecordDispatchRequest body para POST /api/dispatches.
type RecordDispatchRequest struct {
	Unit      string `json:"unit" validate:"required"`
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}

// EntryResponse entrada registrada.
type EntryResponse struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Supplier  string           `json:"supplier"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Note      string           `json:"note,omitempty"`
	CreatedBy string           `json:"created_by,omitempty"`
}

// DispatchResponse salida registrada.
type DispatchResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Unit      string    `json:"unit"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	OutBy     string    `json:"out_by"`
	Note      string    `json:"note,omitempty"`
}

package dto

import "time"

// ResolveProductRequest body para POST /api/products/resolve.
type ResolveProductRequest struct {
	EAN         string `json:"ean" validate:"omitempty,max=64"`
	Reference   string `json:"reference" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Sector      string `json:"sector" validate:"required"`
}

// ResolveProductResponse id del producto y si fue creado.
type ResolveProductResponse struct {
	ProductID string `json:"product_id"`
	Created   bool   `json:"created"`
}

// ProductStockResponse producto con su cantidad actual.
type ProductStockResponse struct {
	ProductID   string    `json:"product_id"`
	EAN         string    `json:"ean,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector"`
	Quantity    int       `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

// NamedResponse sector o unidad.
type NamedResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StockResponse cantidad actual de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AuditResponse resultado de la auditoría del ledger de un producto.
type AuditResponse struct {
	ProductID  string `json:"product_id"`
	Entries    int    `json:"entries"`
	Dispatches int    `json:"dispatches"`
	Fulfilled  int    `json:"fulfilled"`
	Delivered  int    `json:"delivered"`
	Expected   int    `json:"expected"`
	Ledger     int    `json:"ledger"`
	Balanced   bool   `json:"balanced"`
}

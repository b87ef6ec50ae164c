package entity

import "time"

// Fulfillment registra una entrega contra un pedido (hecho inmutable).
// RequestID es la clave de idempotencia opcional enviada por el cliente.
type Fulfillment struct {
	ID                string
	OrderID           string
	FulfilledQuantity int
	FulfilledBy       string
	Notes             string
	RequestID         string
	CreatedAt         time.Time
}

package dto

import "time"

// CartItemRequest línea del carrito: product_id o claves para resolver/crear el producto.
type CartItemRequest struct {
	ProductID   string `json:"product_id" validate:"omitempty,uuid"`
	EAN         string `json:"ean" validate:"omitempty,max=64"`
	Reference   string `json:"reference" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Sector      string `json:"sector"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// SubmitCartRequest body para POST /api/orders. Store sólo se respeta para cd/admin.
type SubmitCartRequest struct {
	Store string            `json:"store"`
	Notes string            `json:"notes" validate:"omitempty,max=500"`
	Items []CartItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SubmitCartResponse ids de pedidos en el orden de las líneas.
type SubmitCartResponse struct {
	OrderIDs []string `json:"order_ids"`
}

// OrderResponse pedido con la cantidad pendiente calculada.
type OrderResponse struct {
	ID                string    `json:"id"`
	Store             string    `json:"store"`
	ProductID         string    `json:"product_id"`
	EAN               string    `json:"ean,omitempty"`
	Reference         string    `json:"reference,omitempty"`
	ProductName       string    `json:"product_name,omitempty"`
	RequestedQuantity int       `json:"requested_quantity"`
	DeliveredQuantity int       `json:"delivered_quantity"`
	PendingQuantity   int       `json:"pending_quantity"`
	RequestedBy       string    `json:"requested_by"`
	Notes             string    `json:"notes,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FulfillOrderRequest body para POST /api/orders/:id/fulfillments.
type FulfillOrderRequest struct {
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
	RequestID string `json:"request_id" validate:"omitempty,max=100"`
}

// FulfillmentResponse una atención registrada.
type FulfillmentResponse struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	FulfilledQuantity int       `json:"fulfilled_quantity"`
	FulfilledBy       string    `json:"fulfilled_by"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// FulfillOrderResponse resultado de una atención.
type FulfillOrderResponse struct {
	Fulfillment FulfillmentResponse `json:"fulfillment"`
	Order       OrderResponse       `json:"order"`
	Stock       int                 `json:"stock"`
	Replayed    bool                `json:"replayed"`
}

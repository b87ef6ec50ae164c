package entity

import "time"

// OrderStatus estado de un pedido de tienda.
type OrderStatus string

// Estados de pedido.
const (
	OrderPending   OrderStatus = "Pending"
	OrderPartial   OrderStatus = "Partial"
	OrderFulfilled OrderStatus = "Fulfilled"
	OrderCancelled OrderStatus = "Cancelled" // terminal
)

// Order es la solicitud de una tienda por una cantidad de un producto.
// RequestedQuantity es fija desde la creación; DeliveredQuantity sólo crece mediante atenciones.
// La cantidad pendiente nunca se almacena: ver Pending().
type Order struct {
	ID                string
	Store             string
	ProductID         string
	RequestedQuantity int
	DeliveredQuantity int
	RequestedBy       string
	Notes             string
	Status            OrderStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Pending cantidad aún no entregada.
func (o *Order) Pending() int {
	return o.RequestedQuantity - o.DeliveredQuantity
}

// OrderView es el pedido unido a los datos del producto (listados).
type OrderView struct {
	Order
	EAN         string
	Reference   string
	ProductName string
}

// Package order contiene las reglas puras del ciclo de vida de un pedido (servicio de dominio):
// derivación de estado, aplicación de una atención y cancelación.
package order

import (
	"fmt"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// DeriveStatus calcula el estado a partir de las cantidades:
// entregado 0 → Pending; 0 < entregado < solicitado → Partial; entregado == solicitado → Fulfilled.
func DeriveStatus(requested, delivered int) entity.OrderStatus {
	switch {
	case delivered <= 0:
		return entity.OrderPending
	case delivered < requested:
		return entity.OrderPartial
	default:
		return entity.OrderFulfilled
	}
}

// ApplyFulfillment valida y aplica una entrega de qty unidades sobre o.
// No modifica o si retorna error.
func ApplyFulfillment(o *entity.Order, qty int, now time.Time) error {
	if o.Status == entity.OrderCancelled {
		return &domain.Error{
			Kind: domain.KindValidation,
			Code: domain.ErrOrderCancelled.Code,
			Msg:  fmt.Sprintf("el pedido %s está cancelado y no acepta atenciones", o.ID),
		}
	}
	remaining := o.Pending()
	if qty > remaining {
		return domain.ExceedsPending(qty, remaining)
	}
	if qty <= 0 {
		return domain.InvalidQuantity(qty)
	}
	o.DeliveredQuantity += qty
	o.Status = DeriveStatus(o.RequestedQuantity, o.DeliveredQuantity)
	o.UpdatedAt = now
	return nil
}

// Cancel pasa el pedido a Cancelled; sólo desde Pending o Partial.
func Cancel(o *entity.Order, now time.Time) error {
	switch o.Status {
	case entity.OrderPending, entity.OrderPartial:
		o.Status = entity.OrderCancelled
		o.UpdatedAt = now
		return nil
	}
	return &domain.Error{
		Kind: domain.KindValidation,
		Code: domain.ErrInvalidTransition.Code,
		Msg:  fmt.Sprintf("no se puede cancelar el pedido %s en estado %s", o.ID, o.Status),
	}
}

// CheckInvariants verifica 0 <= entregado <= solicitado y que el estado sea coherente.
func CheckInvariants(o *entity.Order) error {
	if o.DeliveredQuantity < 0 || o.DeliveredQuantity > o.RequestedQuantity {
		return fmt.Errorf("pedido %s: entregado %d fuera de [0, %d]", o.ID, o.DeliveredQuantity, o.RequestedQuantity)
	}
	if o.Status == entity.OrderCancelled {
		return nil
	}
	if want := DeriveStatus(o.RequestedQuantity, o.DeliveredQuantity); o.Status != want {
		return fmt.Errorf("pedido %s: estado %s, esperado %s", o.ID, o.Status, want)
	}
	return nil
}

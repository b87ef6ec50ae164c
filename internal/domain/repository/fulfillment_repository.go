package repository

import (
	"context"
	"iter"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// FulfillmentRepository registro append-only de atenciones.
type FulfillmentRepository interface {
	// Append no valida contra el pedido: la política lo hace antes, en la misma tx.
	Append(ctx context.Context, f *entity.Fulfillment) error
	GetByRequestID(ctx context.Context, requestID string) (*entity.Fulfillment, error)
	// History recorre las atenciones del pedido por created_at ascendente. Cada range
	// vuelve a consultar el almacenamiento, por lo que la secuencia se puede reiniciar.
	History(ctx context.Context, orderID string) iter.Seq2[*entity.Fulfillment, error]
	// SumByProduct suma las atenciones de todos los pedidos del producto.
	SumByProduct(ctx context.Context, productID string) (int, error)
}

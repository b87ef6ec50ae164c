package repository

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate lee el pedido bloqueando su fila (lectura, verificación y escritura en la misma tx).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update persiste delivered_quantity, status y updated_at.
	Update(ctx context.Context, order *entity.Order) error
	// ListByStore y ListAll ordenan por created_at descendente.
	ListByStore(ctx context.Context, store string) ([]entity.OrderView, error)
	ListAll(ctx context.Context) ([]entity.OrderView, error)
	// SumDeliveredByProduct suma delivered_quantity de todos los pedidos del producto.
	SumDeliveredByProduct(ctx context.Context, productID string) (int, error)
}

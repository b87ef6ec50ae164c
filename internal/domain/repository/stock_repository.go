package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// StockRepository define el puerto del ledger de stock (una fila por producto).
// Las escrituras sólo deben ocurrir dentro de la transacción del evento que las causa.
type StockRepository interface {
	// Init crea la fila en cero para un producto nuevo.
	Init(ctx context.Context, productID string, now time.Time) error
	Get(ctx context.Context, productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error)
	// ApplyDelta suma delta (con signo) a total_quantity creando la fila si falta; devuelve el nuevo total.
	ApplyDelta(ctx context.Context, productID string, delta int, now time.Time) (int, error)
	// ListAvailable productos con cantidad > 0 ordenados por nombre.
	ListAvailable(ctx context.Context) ([]entity.ProductStock, error)
	// ListAll todos los productos, incluidos cero y negativos.
	ListAll(ctx context.Context) ([]entity.ProductStock, error)
}

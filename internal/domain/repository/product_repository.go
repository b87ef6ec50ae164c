package repository

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByEAN(ctx context.Context, ean string) (*entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	// ListBySector devuelve los productos del sector con su stock (0 si no hay fila).
	ListBySector(ctx context.Context, sectorID string) ([]entity.ProductStock, error)
}

package repository

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// EntryRepository hechos de entrada (append-only).
type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Entry, error)
}

// DispatchRepository hechos de salida directa (append-only).
type DispatchRepository interface {
	Create(ctx context.Context, dispatch *entity.Dispatch) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Dispatch, error)
}

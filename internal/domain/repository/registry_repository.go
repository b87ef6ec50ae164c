package repository

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// RegistryRepository listas administradas de sectores y unidades.
type RegistryRepository interface {
	ListSectors(ctx context.Context) ([]entity.Sector, error)
	ListUnits(ctx context.Context) ([]entity.Unit, error)
	AddSector(ctx context.Context, sector *entity.Sector) error
	AddUnit(ctx context.Context, unit *entity.Unit) error
}

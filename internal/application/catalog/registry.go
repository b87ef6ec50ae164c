package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/textnorm"
)

// LookupSector busca el sector por nombre (sin distinguir mayúsculas ni acentos).
// Un nombre desconocido es un error de validación.
func LookupSector(ctx context.Context, reg repository.RegistryRepository, name string) (*entity.Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("el sector es obligatorio")
	}
	sectors, err := reg.ListSectors(ctx)
	if err != nil {
		return nil, err
	}
	key := textnorm.Fold(name)
	for i := range sectors {
		if textnorm.Fold(sectors[i].Name) == key {
			return &sectors[i], nil
		}
	}
	return nil, domain.UnknownSector(name)
}

// LookupUnit busca la unidad de destino por nombre; desconocida = UnknownUnit.
func LookupUnit(ctx context.Context, reg repository.RegistryRepository, name string) (*entity.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("la unidad de destino es obligatoria")
	}
	units, err := reg.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	key := textnorm.Fold(name)
	for i := range units {
		if textnorm.Fold(units[i].Name) == key {
			return &units[i], nil
		}
	}
	return nil, domain.UnknownUnit(name)
}

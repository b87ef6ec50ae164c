package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.RegistryRepository = (*RegistryRepo)(nil)

// RegistryRepo sectores y unidades.
type RegistryRepo struct {
	q Querier
}

// NewRegistryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRegistryRepository(q Querier) *RegistryRepo {
	return &RegistryRepo{q: q}
}

// ListSectors sectores por nombre.
func (r *RegistryRepo) ListSectors(ctx context.Context) ([]entity.Sector, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at FROM sectors ORDER BY name`)
	if err != nil {
		return nil, mapErr("list sectors", err)
	}
	defer rows.Close()
	var list []entity.Sector
	for rows.Next() {
		var s entity.Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, mapErr("scan sector", err)
		}
		list = append(list, s)
	}
	return list, mapErr("iterate sectors", rows.Err())
}

// ListUnits unidades por nombre.
func (r *RegistryRepo) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at FROM units ORDER BY name`)
	if err != nil {
		return nil, mapErr("list units", err)
	}
	defer rows.Close()
	var list []entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, mapErr("scan unit", err)
		}
		list = append(list, u)
	}
	return list, mapErr("iterate units", rows.Err())
}

// AddSector registra un sector; nombre repetido = ErrDuplicate.
func (r *RegistryRepo) AddSector(ctx context.Context, s *entity.Sector) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sectors (id, name, created_at) VALUES ($1, $2, $3)`, s.ID, s.Name, s.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("sector %q: %w", s.Name, domain.ErrDuplicate)
	}
	return mapErr("insert sector", err)
}

// AddUnit registra una unidad; nombre repetido = ErrDuplicate.
func (r *RegistryRepo) AddUnit(ctx context.Context, u *entity.Unit) error {
	_, err := r.q.Exec(ctx, `INSERT INTO units (id, name, created_at) VALUES ($1, $2, $3)`, u.ID, u.Name, u.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("unidad %q: %w", u.Name, domain.ErrDuplicate)
	}
	return mapErr("insert unit", err)
}

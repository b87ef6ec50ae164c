package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.ProductRepository = productRepo{}

type productRepo struct{ handle }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	var err error
	r.with(func(st *state) {
		for _, existing := range st.products {
			if (p.EAN != "" && existing.EAN == p.EAN) || (p.Reference != "" && existing.Reference == p.Reference) {
				err = fmt.Errorf("producto %s: %w", p.ID, domain.ErrDuplicate)
				return
			}
		}
		st.products[p.ID] = *p
	})
	return err
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.with(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r productRepo) GetByEAN(_ context.Context, ean string) (*entity.Product, error) {
	return r.findBy(func(p entity.Product) bool { return ean != "" && p.EAN == ean }), nil
}

func (r productRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	return r.findBy(func(p entity.Product) bool { return reference != "" && p.Reference == reference }), nil
}

func (r productRepo) findBy(match func(entity.Product) bool) *entity.Product {
	var out *entity.Product
	r.with(func(st *state) {
		for _, p := range st.products {
			if match(p) {
				out = &p
				return
			}
		}
	})
	return out
}

func (r productRepo) ListBySector(_ context.Context, sectorID string) ([]entity.ProductStock, error) {
	var list []entity.ProductStock
	r.with(func(st *state) {
		for _, p := range st.products {
			if p.SectorID == sectorID {
				list = append(list, productStock(st, p))
			}
		}
	})
	sortByName(list)
	return list, nil
}

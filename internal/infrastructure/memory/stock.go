package memory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.StockRepository = stockRepo{}

type stockRepo struct{ handle }

func (r stockRepo) Init(_ context.Context, productID string, now time.Time) error {
	r.with(func(st *state) {
		if _, ok := st.stock[productID]; !ok {
			st.stock[productID] = entity.StockLevel{ProductID: productID, LastUpdated: now}
		}
	})
	return nil
}

func (r stockRepo) Get(_ context.Context, productID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	r.with(func(st *state) {
		if lvl, ok := st.stock[productID]; ok {
			out = &lvl
		}
	})
	return out, nil
}

// GetForUpdate equivale a Get: el lock global de la transacción ya serializa el acceso.
func (r stockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID)
}

func (r stockRepo) ApplyDelta(_ context.Context, productID string, delta int, now time.Time) (int, error) {
	var total int
	r.with(func(st *state) {
		lvl := st.stock[productID]
		lvl.ProductID = productID
		lvl.TotalQuantity += delta
		lvl.LastUpdated = now
		st.stock[productID] = lvl
		total = lvl.TotalQuantity
	})
	return total, nil
}

func (r stockRepo) ListAvailable(_ context.Context) ([]entity.ProductStock, error) {
	var list []entity.ProductStock
	r.with(func(st *state) {
		for _, p := range st.products {
			if ps := productStock(st, p); ps.Quantity > 0 {
				list = append(list, ps)
			}
		}
	})
	sortByName(list)
	return list, nil
}

func (r stockRepo) ListAll(_ context.Context) ([]entity.ProductStock, error) {
	var list []entity.ProductStock
	r.with(func(st *state) {
		for _, p := range st.products {
			list = append(list, productStock(st, p))
		}
	})
	sortByName(list)
	return list, nil
}

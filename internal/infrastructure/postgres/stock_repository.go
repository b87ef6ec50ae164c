package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Init crea la fila en cero; si ya existe no hace nada.
func (r *StockRepo) Init(ctx context.Context, productID string, now time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (product_id, total_quantity, last_updated)
		VALUES ($1, 0, $2)
		ON CONFLICT (product_id) DO NOTHING`, productID, now)
	return mapErr("init stock", err)
}

// Get obtiene el nivel actual; (nil, nil) si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, "get stock", `
		SELECT product_id, total_quantity, last_updated
		FROM stock_levels WHERE product_id = $1`, productID)
}

// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockLevel, error) {
	return r.get(ctx, "get stock for update", `
		SELECT product_id, total_quantity, last_updated
		FROM stock_levels WHERE product_id = $1
		FOR UPDATE`, productID)
}

func (r *StockRepo) get(ctx context.Context, op, query, productID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.TotalQuantity, &s.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return &s, nil
}

// ApplyDelta suma delta en una sola sentencia (lectura y escritura atómicas sobre la fila).
func (r *StockRepo) ApplyDelta(ctx context.Context, productID string, delta int, now time.Time) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_levels (product_id, total_quantity, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET total_quantity = stock_levels.total_quantity + EXCLUDED.total_quantity,
		              last_updated = EXCLUDED.last_updated
		RETURNING total_quantity`, productID, delta, now).Scan(&total)
	if err != nil {
		return 0, mapErr("apply stock delta", err)
	}
	return total, nil
}

// ListAvailable productos con cantidad > 0, por nombre.
func (r *StockRepo) ListAvailable(ctx context.Context) ([]entity.ProductStock, error) {
	rows, err := r.q.Query(ctx, productStockSelect+` WHERE sl.total_quantity > 0 ORDER BY p.name, p.id`)
	if err != nil {
		return nil, mapErr("list available stock", err)
	}
	return scanProductStock(rows)
}

// ListAll todos los productos, incluidos cero y negativos.
func (r *StockRepo) ListAll(ctx context.Context) ([]entity.ProductStock, error) {
	rows, err := r.q.Query(ctx, productStockSelect+` ORDER BY p.name, p.id`)
	if err != nil {
		return nil, mapErr("list stock", err)
	}
	return scanProductStock(rows)
}

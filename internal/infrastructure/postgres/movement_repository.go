package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var (
	_ repository.EntryRepository    = (*EntryRepo)(nil)
	_ repository.DispatchRepository = (*DispatchRepo)(nil)
)

// EntryRepo hechos de entrada de mercancía.
type EntryRepo struct {
	q Querier
}

// NewEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEntryRepository(q Querier) *EntryRepo {
	return &EntryRepo{q: q}
}

// Create inserta la entrada; unit_cost NULL si no se informó.
func (r *EntryRepo) Create(ctx context.Context, e *entity.Entry) error {
	cost := decimal.NullDecimal{}
	if e.UnitCost != nil {
		cost = decimal.NullDecimal{Decimal: *e.UnitCost, Valid: true}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO entries (id, ts, supplier, product_id, quantity, unit_cost, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Timestamp, e.Supplier, e.ProductID, e.Quantity, cost, e.Note, e.CreatedBy,
	)
	return mapErr("insert entry", err)
}

// ListByProduct entradas del producto en orden cronológico.
func (r *EntryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Entry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, ts, supplier, product_id, quantity, unit_cost, note, created_by
		FROM entries WHERE product_id = $1
		ORDER BY ts, id`, productID)
	if err != nil {
		return nil, mapErr("list entries", err)
	}
	defer rows.Close()
	var list []*entity.Entry
	for rows.Next() {
		var e entity.Entry
		var cost decimal.NullDecimal
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Supplier, &e.ProductID, &e.Quantity, &cost,
			&e.Note, &e.CreatedBy); err != nil {
			return nil, mapErr("scan entry", err)
		}
		if cost.Valid {
			c := cost.Decimal
			e.UnitCost = &c
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("iterate entries", err)
	}
	return list, nil
}

// DispatchRepo hechos de salida directa.
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

// Create inserta la salida.
func (r *DispatchRepo) Create(ctx context.Context, d *entity.Dispatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dispatches (id, ts, unit_id, product_id, quantity, out_by, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Timestamp, d.UnitID, d.ProductID, d.Quantity, d.OutBy, d.Note,
	)
	return mapErr("insert dispatch", err)
}

// ListByProduct salidas del producto con el nombre de la unidad.
func (r *DispatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Dispatch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.ts, d.unit_id, u.name, d.product_id, d.quantity, d.out_by, d.note
		FROM dispatches d
		JOIN units u ON u.id = d.unit_id
		WHERE d.product_id = $1
		ORDER BY d.ts, d.id`, productID)
	if err != nil {
		return nil, mapErr("list dispatches", err)
	}
	defer rows.Close()
	var list []*entity.Dispatch
	for rows.Next() {
		var d entity.Dispatch
		if err := rows.Scan(&d.ID, &d.Timestamp, &d.UnitID, &d.UnitName, &d.ProductID, &d.Quantity,
			&d.OutBy, &d.Note); err != nil {
			return nil, mapErr("scan dispatch", err)
		}
		list = append(list, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("iterate dispatches", err)
	}
	return list, nil
}

package postgres

import (
	"context"
	"errors"
	"iter"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.FulfillmentRepository = (*FulfillmentRepo)(nil)

// FulfillmentRepo registro append-only de atenciones.
type FulfillmentRepo struct {
	q Querier
}

// NewFulfillmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFulfillmentRepository(q Querier) *FulfillmentRepo {
	return &FulfillmentRepo{q: q}
}

const fulfillmentColumns = `id, order_id, fulfilled_quantity, fulfilled_by, notes, COALESCE(request_id, ''), created_at`

// Append inserta la atención. Un request_id repetido indica que otra transacción con la misma
// clave ganó la carrera: el reintento la encontrará y devolverá la repetición.
func (r *FulfillmentRepo) Append(ctx context.Context, f *entity.Fulfillment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO fulfillments (id, order_id, fulfilled_quantity, fulfilled_by, notes, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.OrderID, f.FulfilledQuantity, f.FulfilledBy, f.Notes, nullIfEmpty(f.RequestID), f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && f.RequestID != "" {
			return domain.ConcurrencyConflict(err)
		}
		return mapErr("insert fulfillment", err)
	}
	return nil
}

// GetByRequestID busca la atención registrada con la clave de idempotencia.
func (r *FulfillmentRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Fulfillment, error) {
	if requestID == "" {
		return nil, nil
	}
	var f entity.Fulfillment
	err := r.q.QueryRow(ctx, `SELECT `+fulfillmentColumns+` FROM fulfillments WHERE request_id = $1`, requestID).
		Scan(&f.ID, &f.OrderID, &f.FulfilledQuantity, &f.FulfilledBy, &f.Notes, &f.RequestID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get fulfillment by request id", err)
	}
	return &f, nil
}

// History consulta en cada recorrido y entrega las filas a medida que se leen.
func (r *FulfillmentRepo) History(ctx context.Context, orderID string) iter.Seq2[*entity.Fulfillment, error] {
	return func(yield func(*entity.Fulfillment, error) bool) {
		rows, err := r.q.Query(ctx, `
			SELECT `+fulfillmentColumns+`
			FROM fulfillments WHERE order_id = $1
			ORDER BY created_at, id`, orderID)
		if err != nil {
			yield(nil, mapErr("query fulfillment history", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var f entity.Fulfillment
			if err := rows.Scan(&f.ID, &f.OrderID, &f.FulfilledQuantity, &f.FulfilledBy, &f.Notes,
				&f.RequestID, &f.CreatedAt); err != nil {
				yield(nil, mapErr("scan fulfillment", err))
				return
			}
			if !yield(&f, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, mapErr("iterate fulfillment history", err))
		}
	}
}

// SumByProduct total atendido del producto, en una sola consulta sobre pedidos y atenciones.
func (r *FulfillmentRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(f.fulfilled_quantity), 0)::int
		FROM fulfillments f
		JOIN orders o ON o.id = f.order_id
		WHERE o.product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, mapErr("sum fulfillments by product", err)
	}
	return total, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos de tienda sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, store, product_id, requested_quantity, delivered_quantity, requested_by, notes, status, created_at, updated_at`

// Create inserta el pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.Store, o.ProductID, o.RequestedQuantity, o.DeliveredQuantity,
		o.RequestedBy, o.Notes, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pedido %s: %w", o.ID, domain.ErrDuplicate)
		}
		return mapErr("insert order", err)
	}
	return nil
}

// GetByID obtiene un pedido; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene el pedido bloqueando su fila hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "get order for update", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, op, query, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Store, &o.ProductID, &o.RequestedQuantity, &o.DeliveredQuantity,
		&o.RequestedBy, &o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return &o, nil
}

// Update persiste delivered_quantity, status y updated_at.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET delivered_quantity = $2, status = $3, updated_at = $4
		WHERE id = $1`,
		o.ID, o.DeliveredQuantity, string(o.Status), o.UpdatedAt,
	)
	if err != nil {
		return mapErr("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pedido %s no encontrado", o.ID)
	}
	return nil
}

const orderViewSelect = `
	SELECT o.id, o.store, o.product_id, o.requested_quantity, o.delivered_quantity, o.requested_by,
	       o.notes, o.status, o.created_at, o.updated_at,
	       COALESCE(p.ean, ''), COALESCE(p.reference, ''), p.name
	FROM orders o
	JOIN products p ON p.id = o.product_id`

// ListByStore pedidos de una tienda, más recientes primero.
func (r *OrderRepo) ListByStore(ctx context.Context, store string) ([]entity.OrderView, error) {
	rows, err := r.q.Query(ctx, orderViewSelect+` WHERE o.store = $1 ORDER BY o.created_at DESC, o.id`, store)
	if err != nil {
		return nil, mapErr("list orders by store", err)
	}
	return scanOrderViews(rows)
}

// ListAll todos los pedidos, más recientes primero.
func (r *OrderRepo) ListAll(ctx context.Context) ([]entity.OrderView, error) {
	rows, err := r.q.Query(ctx, orderViewSelect+` ORDER BY o.created_at DESC, o.id`)
	if err != nil {
		return nil, mapErr("list orders", err)
	}
	return scanOrderViews(rows)
}

// SumDeliveredByProduct total entregado del producto en todos sus pedidos.
func (r *OrderRepo) SumDeliveredByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delivered_quantity), 0)::int FROM orders WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, mapErr("sum delivered by product", err)
	}
	return total, nil
}

func scanOrderViews(rows pgx.Rows) ([]entity.OrderView, error) {
	defer rows.Close()
	var list []entity.OrderView
	for rows.Next() {
		var v entity.OrderView
		if err := rows.Scan(&v.ID, &v.Store, &v.ProductID, &v.RequestedQuantity, &v.DeliveredQuantity,
			&v.RequestedBy, &v.Notes, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.EAN, &v.Reference, &v.ProductName); err != nil {
			return nil, mapErr("scan order", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("iterate orders", err)
	}
	return list, nil
}

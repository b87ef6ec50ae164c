package reconciliation

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/order"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

// FulfillInput atención de un pedido. RequestID es la clave de idempotencia opcional.
type FulfillInput struct {
	OrderID     string
	Quantity    int
	FulfilledBy string
	Notes       string
	RequestID   string
}

// FulfillResult resultado de FulfillOrder. Replayed indica que RequestID ya se había aplicado
// y no hubo efectos nuevos.
type FulfillResult struct {
	Fulfillment *entity.Fulfillment
	Order       *entity.Order
	Stock       int
	Replayed    bool
}

// FulfillOrder aplica una entrega contra un pedido: agrega la atención, actualiza el pedido
// y descuenta el ledger en una sola transacción, con la fila del pedido bloqueada.
func (p *Policy) FulfillOrder(ctx context.Context, in FulfillInput) (*FulfillResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.InvalidQuantity(in.Quantity)
	}
	if err := required(in.OrderID, "el pedido"); err != nil {
		return nil, err
	}
	if err := required(in.FulfilledBy, "el responsable de la atención"); err != nil {
		return nil, err
	}
	in.RequestID = strings.TrimSpace(in.RequestID)

	var res *FulfillResult
	err := p.run(ctx, OpFulfillOrder, func(tx repository.TxRepos) error {
		var err error
		res, err = p.fulfillInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Replayed {
		p.log.Info().Str("order_id", in.OrderID).Str("request_id", in.RequestID).Msg("atención repetida ignorada")
		return res, nil
	}
	p.metrics.ObserveStockDelta(OpFulfillOrder, -in.Quantity)
	p.log.Info().Str("order_id", res.Order.ID).Str("fulfillment_id", res.Fulfillment.ID).
		Int("quantity", in.Quantity).Int("delivered", res.Order.DeliveredQuantity).
		Int("pending", res.Order.Pending()).Str("status", string(res.Order.Status)).
		Int("stock", res.Stock).Str("by", in.FulfilledBy).Msg("pedido atendido")
	return res, nil
}

func (p *Policy) fulfillInTx(ctx context.Context, tx repository.TxRepos, in FulfillInput) (*FulfillResult, error) {
	o, err := tx.Orders.GetForUpdate(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido %s no encontrado", in.OrderID)
	}

	if in.RequestID != "" {
		prev, err := tx.Fulfillments.GetByRequestID(ctx, in.RequestID)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			if prev.OrderID != o.ID {
				return nil, domain.Validation("request_id %q ya fue usado en otro pedido", in.RequestID)
			}
			lvl, err := tx.Stock.Get(ctx, o.ProductID)
			if err != nil {
				return nil, err
			}
			res := &FulfillResult{Fulfillment: prev, Order: o, Replayed: true}
			if lvl != nil {
				res.Stock = lvl.TotalQuantity
			}
			return res, nil
		}
	}

	now := p.now()
	if err := order.ApplyFulfillment(o, in.Quantity, now); err != nil {
		return nil, err
	}
	if err := p.checkFloor(ctx, tx, o.ProductID, in.Quantity); err != nil {
		return nil, err
	}

	f := &entity.Fulfillment{
		ID:                uuid.New().String(),
		OrderID:           o.ID,
		FulfilledQuantity: in.Quantity,
		FulfilledBy:       strings.TrimSpace(in.FulfilledBy),
		Notes:             strings.TrimSpace(in.Notes),
		RequestID:         in.RequestID,
		CreatedAt:         now,
	}
	if err := tx.Fulfillments.Append(ctx, f); err != nil {
		return nil, err
	}
	if err := tx.Orders.Update(ctx, o); err != nil {
		return nil, err
	}
	total, err := tx.Stock.ApplyDelta(ctx, o.ProductID, -in.Quantity, now)
	if err != nil {
		return nil, err
	}
	if err := appendEvent(ctx, tx, entity.AggregateOrder, o.ID, entity.EventOrderFulfilled, map[string]any{
		"order_id":           o.ID,
		"fulfillment_id":     f.ID,
		"product_id":         o.ProductID,
		"quantity":           f.FulfilledQuantity,
		"delivered_quantity": o.DeliveredQuantity,
		"status":             o.Status,
		"fulfilled_by":       f.FulfilledBy,
	}, now); err != nil {
		return nil, err
	}
	return &FulfillResult{Fulfillment: f, Order: o, Stock: total}, nil
}

// History secuencia perezosa de las atenciones del pedido, más antiguas primero.
// Cada recorrido vuelve a leer el almacenamiento.
func (p *Policy) History(ctx context.Context, orderID string) iter.Seq2[*entity.Fulfillment, error] {
	return p.reads.Fulfillments.History(ctx, orderID)
}

// CollectHistory materializa History verificando que el pedido exista.
func (p *Policy) CollectHistory(ctx context.Context, orderID string) ([]*entity.Fulfillment, error) {
	o, err := p.reads.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido %s no encontrado", orderID)
	}
	var out []*entity.Fulfillment
	for f, err := range p.History(ctx, orderID) {
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func appendEvent(ctx context.Context, tx repository.TxRepos, aggType, aggID, eventType string, payload any, now time.Time) error {
	ev, err := entity.NewOutboxEvent(aggType, aggID, eventType, payload, now)
	if err != nil {
		return domain.Persistence("serializar evento", err)
	}
	return tx.Outbox.Append(ctx, ev)
}

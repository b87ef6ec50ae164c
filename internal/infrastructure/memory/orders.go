package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var (
	_ repository.OrderRepository       = orderRepo{}
	_ repository.FulfillmentRepository = fulfillmentRepo{}
)

type orderRepo struct{ handle }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	var err error
	r.with(func(st *state) {
		if _, ok := st.orders[o.ID]; ok {
			err = fmt.Errorf("pedido %s: %w", o.ID, domain.ErrDuplicate)
			return
		}
		st.orders[o.ID] = *o
		st.orderSeq = append(st.orderSeq, o.ID)
	})
	return err
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	r.with(func(st *state) {
		if o, ok := st.orders[id]; ok {
			out = &o
		}
	})
	return out, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) Update(_ context.Context, o *entity.Order) error {
	var err error
	r.with(func(st *state) {
		cur, ok := st.orders[o.ID]
		if !ok {
			err = domain.NotFound("pedido %s no encontrado", o.ID)
			return
		}
		cur.DeliveredQuantity = o.DeliveredQuantity
		cur.Status = o.Status
		cur.UpdatedAt = o.UpdatedAt
		st.orders[o.ID] = cur
	})
	return err
}

func (r orderRepo) ListByStore(_ context.Context, store string) ([]entity.OrderView, error) {
	return r.list(func(o entity.Order) bool { return o.Store == store }), nil
}

func (r orderRepo) ListAll(_ context.Context) ([]entity.OrderView, error) {
	return r.list(func(entity.Order) bool { return true }), nil
}

func (r orderRepo) SumDeliveredByProduct(_ context.Context, productID string) (int, error) {
	total := 0
	r.with(func(st *state) {
		for _, o := range st.orders {
			if o.ProductID == productID {
				total += o.DeliveredQuantity
			}
		}
	})
	return total, nil
}

// list devuelve los pedidos más recientes primero; a igual created_at gana el último insertado.
func (r orderRepo) list(match func(entity.Order) bool) []entity.OrderView {
	var out []entity.OrderView
	r.with(func(st *state) {
		for i := len(st.orderSeq) - 1; i >= 0; i-- {
			o := st.orders[st.orderSeq[i]]
			if !match(o) {
				continue
			}
			v := entity.OrderView{Order: o}
			if p, ok := st.products[o.ProductID]; ok {
				v.EAN, v.Reference, v.ProductName = p.EAN, p.Reference, p.Name
			}
			out = append(out, v)
		}
	})
	slices.SortStableFunc(out, func(a, b entity.OrderView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

type fulfillmentRepo struct{ handle }

func (r fulfillmentRepo) Append(_ context.Context, f *entity.Fulfillment) error {
	r.with(func(st *state) {
		st.fulfillments = append(st.fulfillments, *f)
	})
	return nil
}

func (r fulfillmentRepo) GetByRequestID(_ context.Context, requestID string) (*entity.Fulfillment, error) {
	var out *entity.Fulfillment
	if requestID == "" {
		return nil, nil
	}
	r.with(func(st *state) {
		for _, f := range st.fulfillments {
			if f.RequestID == requestID {
				out = &f
				return
			}
		}
	})
	return out, nil
}

// History toma una copia de las atenciones del pedido en cada recorrido.
func (r fulfillmentRepo) History(ctx context.Context, orderID string) iter.Seq2[*entity.Fulfillment, error] {
	return func(yield func(*entity.Fulfillment, error) bool) {
		var list []entity.Fulfillment
		r.with(func(st *state) {
			for _, f := range st.fulfillments {
				if f.OrderID == orderID {
					list = append(list, f)
				}
			}
		})
		slices.SortStableFunc(list, func(a, b entity.Fulfillment) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		for i := range list {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&list[i], nil) {
				return
			}
		}
	}
}

func (r fulfillmentRepo) SumByProduct(_ context.Context, productID string) (int, error) {
	total := 0
	r.with(func(st *state) {
		for _, f := range st.fulfillments {
			if o, ok := st.orders[f.OrderID]; ok && o.ProductID == productID {
				total += f.FulfilledQuantity
			}
		}
	})
	return total, nil
}

// Package ordering implementa el OrderStore: creación, consulta, cancelación y envío del carrito.
package ordering

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/order"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

// CreateInput datos de un pedido.
type CreateInput struct {
	Store             string
	ProductID         string
	RequestedQuantity int
	RequestedBy       string
	Notes             string
}

func (in CreateInput) validate() error {
	if in.RequestedQuantity <= 0 {
		return domain.InvalidQuantity(in.RequestedQuantity)
	}
	if strings.TrimSpace(in.Store) == "" {
		return domain.Validation("la tienda es obligatoria")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return domain.Validation("el producto es obligatorio")
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return domain.Validation("el solicitante es obligatorio")
	}
	return nil
}

// Service OrderStore. delivered_quantity y status no tienen setter: sólo cambian por atenciones o Cancel.
type Service struct {
	txRunner repository.TxRunner
	orders   repository.OrderRepository
	retry    retry.Policy
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el OrderStore.
func NewService(txRunner repository.TxRunner, orders repository.OrderRepository, rp retry.Policy, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{txRunner: txRunner, orders: orders, retry: rp, log: log.Component("ordering"), now: time.Now}
}

// Create registra un pedido Pending con delivered_quantity = 0.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	var id string
	err := s.retry.Do(ctx, "create_order", func() error {
		return s.txRunner.Run(ctx, func(tx repository.TxRepos) error {
			p, err := tx.Products.GetByID(ctx, in.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto %s no encontrado", in.ProductID)
			}
			id, err = createInTx(ctx, tx, in, s.now())
			return err
		})
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("order_id", id).Str("store", in.Store).Str("product_id", in.ProductID).
		Int("requested", in.RequestedQuantity).Str("by", in.RequestedBy).Msg("pedido creado")
	return id, nil
}

func createInTx(ctx context.Context, tx repository.TxRepos, in CreateInput, now time.Time) (string, error) {
	o := &entity.Order{
		ID:                uuid.New().String(),
		Store:             strings.TrimSpace(in.Store),
		ProductID:         in.ProductID,
		RequestedQuantity: in.RequestedQuantity,
		RequestedBy:       strings.TrimSpace(in.RequestedBy),
		Notes:             strings.TrimSpace(in.Notes),
		Status:            entity.OrderPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.Orders.Create(ctx, o); err != nil {
		return "", err
	}
	ev, err := entity.NewOutboxEvent(entity.AggregateOrder, o.ID, entity.EventOrderCreated, map[string]any{
		"order_id":           o.ID,
		"store":              o.Store,
		"product_id":         o.ProductID,
		"requested_quantity": o.RequestedQuantity,
		"requested_by":       o.RequestedBy,
	}, now)
	if err != nil {
		return "", err
	}
	if err := tx.Outbox.Append(ctx, ev); err != nil {
		return "", err
	}
	return o.ID, nil
}

// Get devuelve el pedido o NotFound.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido %s no encontrado", id)
	}
	return o, nil
}

// ListByStore pedidos de una tienda, más recientes primero.
func (s *Service) ListByStore(ctx context.Context, store string) ([]entity.OrderView, error) {
	return s.orders.ListByStore(ctx, store)
}

// ListAll todos los pedidos, más recientes primero.
func (s *Service) ListAll(ctx context.Context) ([]entity.OrderView, error) {
	return s.orders.ListAll(ctx)
}

// Cancel cancela un pedido Pending o Partial. El stock ya entregado no se revierte.
func (s *Service) Cancel(ctx context.Context, id, by string) (*entity.Order, error) {
	if strings.TrimSpace(by) == "" {
		return nil, domain.Validation("el responsable de la cancelación es obligatorio")
	}
	var out *entity.Order
	err := s.retry.Do(ctx, "cancel_order", func() error {
		return s.txRunner.Run(ctx, func(tx repository.TxRepos) error {
			o, err := tx.Orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if o == nil {
				return domain.NotFound("pedido %s no encontrado", id)
			}
			now := s.now()
			if err := order.Cancel(o, now); err != nil {
				return err
			}
			if err := tx.Orders.Update(ctx, o); err != nil {
				return err
			}
			ev, err := entity.NewOutboxEvent(entity.AggregateOrder, o.ID, entity.EventOrderCancelled, map[string]any{
				"order_id":           o.ID,
				"delivered_quantity": o.DeliveredQuantity,
				"cancelled_by":       by,
			}, now)
			if err != nil {
				return err
			}
			if err := tx.Outbox.Append(ctx, ev); err != nil {
				return err
			}
			out = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", id).Str("by", by).Msg("pedido cancelado")
	return out, nil
}

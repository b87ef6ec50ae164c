package reconciliation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

// EntryInput recepción de mercancía.
type EntryInput struct {
	Supplier  string
	ProductID string
	Quantity  int
	UnitCost  *decimal.Decimal
	Note      string
	CreatedBy string
}

func (in EntryInput) validate() error {
	if in.Quantity <= 0 {
		return domain.InvalidQuantity(in.Quantity)
	}
	if err := required(in.Supplier, "el proveedor"); err != nil {
		return err
	}
	if err := required(in.ProductID, "el producto"); err != nil {
		return err
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.Validation("el costo unitario no puede ser negativo")
	}
	return nil
}

// RecordEntry agrega la entrada y suma la cantidad al ledger en la misma transacción.
func (p *Policy) RecordEntry(ctx context.Context, in EntryInput) (*entity.Entry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *entity.Entry
	var total int
	err := p.run(ctx, OpRecordEntry, func(tx repository.TxRepos) error {
		if err := productExists(ctx, tx, in.ProductID); err != nil {
			return err
		}
		now := p.now()
		e := &entity.Entry{
			ID:        uuid.New().String(),
			Timestamp: now,
			Supplier:  strings.TrimSpace(in.Supplier),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitCost:  in.UnitCost,
			Note:      strings.TrimSpace(in.Note),
			CreatedBy: in.CreatedBy,
		}
		if err := tx.Entries.Create(ctx, e); err != nil {
			return err
		}
		var err error
		if total, err = tx.Stock.ApplyDelta(ctx, e.ProductID, e.Quantity, now); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, entity.AggregateEntry, e.ID, entity.EventEntryRecorded, map[string]any{
			"entry_id":   e.ID,
			"product_id": e.ProductID,
			"supplier":   e.Supplier,
			"quantity":   e.Quantity,
			"stock":      total,
		}, e.Timestamp); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStockDelta(OpRecordEntry, out.Quantity)
	p.log.Info().Str("entry_id", out.ID).Str("product_id", out.ProductID).Int("quantity", out.Quantity).
		Int("stock", total).Str("supplier", out.Supplier).Msg("entrada registrada")
	return out, nil
}

// DispatchInput salida directa hacia una unidad.
type DispatchInput struct {
	Unit      string
	ProductID string
	Quantity  int
	OutBy     string
	Note      string
}

func (in DispatchInput) validate() error {
	if in.Quantity <= 0 {
		return domain.InvalidQuantity(in.Quantity)
	}
	if err := required(in.Unit, "la unidad de destino"); err != nil {
		return err
	}
	if err := required(in.ProductID, "el producto"); err != nil {
		return err
	}
	return required(in.OutBy, "el responsable de la salida")
}

// RecordDispatch agrega la salida y resta la cantidad del ledger. La unidad debe existir.
func (p *Policy) RecordDispatch(ctx context.Context, in DispatchInput) (*entity.Dispatch, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *entity.Dispatch
	var total int
	err := p.run(ctx, OpRecordDispatch, func(tx repository.TxRepos) error {
		unit, err := catalog.LookupUnit(ctx, tx.Registry, in.Unit)
		if err != nil {
			return err
		}
		if err := productExists(ctx, tx, in.ProductID); err != nil {
			return err
		}
		if err := p.checkFloor(ctx, tx, in.ProductID, in.Quantity); err != nil {
			return err
		}
		now := p.now()
		d := &entity.Dispatch{
			ID:        uuid.New().String(),
			Timestamp: now,
			UnitID:    unit.ID,
			UnitName:  unit.Name,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			OutBy:     strings.TrimSpace(in.OutBy),
			Note:      strings.TrimSpace(in.Note),
		}
		if err := tx.Dispatches.Create(ctx, d); err != nil {
			return err
		}
		if total, err = tx.Stock.ApplyDelta(ctx, d.ProductID, -d.Quantity, now); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, entity.AggregateDispatch, d.ID, entity.EventDispatchRecorded, map[string]any{
			"dispatch_id": d.ID,
			"product_id":  d.ProductID,
			"unit":        unit.Name,
			"quantity":    d.Quantity,
			"out_by":      d.OutBy,
			"stock":       total,
		}, now); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStockDelta(OpRecordDispatch, -out.Quantity)
	ev := p.log.Info()
	if total < 0 {
		ev = p.log.Warn()
	}
	ev.Str("dispatch_id", out.ID).Str("product_id", out.ProductID).Str("unit", out.UnitName).
		Int("quantity", out.Quantity).Int("stock", total).Str("by", out.OutBy).Msg("salida registrada")
	return out, nil
}

// ListEntries entradas de un producto (auditoría).
func (p *Policy) ListEntries(ctx context.Context, productID string) ([]*entity.Entry, error) {
	return p.reads.Entries.ListByProduct(ctx, productID)
}

// ListDispatches salidas de un producto (auditoría).
func (p *Policy) ListDispatches(ctx context.Context, productID string) ([]*entity.Dispatch, error) {
	return p.reads.Dispatches.ListByProduct(ctx, productID)
}

func productExists(ctx context.Context, tx repository.TxRepos, productID string) error {
	prod, err := tx.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if prod == nil {
		return domain.NotFound("producto %s no encontrado", productID)
	}
	return nil
}

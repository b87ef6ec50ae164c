package reconciliation

import (
	"context"

	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

// Audit compara el ledger de un producto con la suma de sus hechos.
type Audit struct {
	ProductID  string
	Entries    int
	Dispatches int
	Fulfilled  int // suma de las atenciones
	Delivered  int // suma de delivered_quantity de los pedidos
	Expected   int // entradas - salidas - atenciones
	Ledger     int
}

// Balanced indica si el ledger coincide con los hechos y los pedidos con sus atenciones.
func (a Audit) Balanced() bool { return a.Expected == a.Ledger && a.Delivered == a.Fulfilled }

// AuditProduct recalcula el total del producto a partir de entradas, salidas y atenciones.
// Con un SnapshotRunner todas las lecturas ven la misma instantánea.
func (p *Policy) AuditProduct(ctx context.Context, productID string) (*Audit, error) {
	run := p.txRunner.Run
	if sr, ok := p.txRunner.(repository.SnapshotRunner); ok {
		run = sr.RunSnapshot
	}
	var out *Audit
	err := run(ctx, func(tx repository.TxRepos) error {
		if err := productExists(ctx, tx, productID); err != nil {
			return err
		}
		a := &Audit{ProductID: productID}
		entries, err := tx.Entries.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			a.Entries += e.Quantity
		}
		dispatches, err := tx.Dispatches.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		for _, d := range dispatches {
			a.Dispatches += d.Quantity
		}
		if a.Fulfilled, err = tx.Fulfillments.SumByProduct(ctx, productID); err != nil {
			return err
		}
		if a.Delivered, err = tx.Orders.SumDeliveredByProduct(ctx, productID); err != nil {
			return err
		}
		lvl, err := tx.Stock.Get(ctx, productID)
		if err != nil {
			return err
		}
		if lvl != nil {
			a.Ledger = lvl.TotalQuantity
		}
		a.Expected = a.Entries - a.Dispatches - a.Fulfilled
		out = a
		return nil
	})
	return out, err
}

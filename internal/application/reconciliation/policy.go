// Package reconciliation aplica atómicamente las entradas, salidas y atenciones de pedidos
// sobre el ledger de stock, los pedidos y el registro de atenciones.
package reconciliation

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

// Config reglas configurables de la política.
type Config struct {
	// AllowNegativeStock false activa el piso: salidas y atenciones no pueden dejar el total < 0.
	AllowNegativeStock bool
}

// Metrics observa el resultado de cada operación.
type Metrics interface {
	retry.Observer
	ObserveOperation(op string, err error, elapsed time.Duration)
	ObserveStockDelta(op string, delta int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRetry(string)                           {}
func (nopMetrics) ObserveOperation(string, error, time.Duration) {}
func (nopMetrics) ObserveStockDelta(string, int)                 {}

// Nombres de operación (logs y métricas).
const (
	OpRecordEntry    = "record_entry"
	OpRecordDispatch = "record_dispatch"
	OpFulfillOrder   = "fulfill_order"
)

// Policy es el único escritor del ledger de stock.
type Policy struct {
	txRunner repository.TxRunner
	reads    repository.TxRepos
	cfg      Config
	retry    retry.Policy
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewPolicy construye la política. reads son repos fuera de transacción para las consultas.
func NewPolicy(txRunner repository.TxRunner, reads repository.TxRepos, cfg Config, rp retry.Policy, m Metrics, log *logger.Logger) *Policy {
	if m == nil {
		m = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("reconciliation")
	rp.Observer = m
	rp.Log = l
	return &Policy{
		txRunner: txRunner,
		reads:    reads,
		cfg:      cfg,
		retry:    rp,
		metrics:  m,
		log:      l,
		now:      time.Now,
	}
}

// run ejecuta fn en una transacción con reintentos ante conflictos y registra la métrica.
func (p *Policy) run(ctx context.Context, op string, fn func(tx repository.TxRepos) error) error {
	start := time.Now()
	err := p.retry.Do(ctx, op, func() error {
		return p.txRunner.Run(ctx, fn)
	})
	p.metrics.ObserveOperation(op, err, time.Since(start))
	return err
}

func required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validation("%s es obligatorio", field)
	}
	return nil
}

// checkFloor bloquea la fila de stock y, con el piso activo, rechaza dejar el total por debajo de cero.
func (p *Policy) checkFloor(ctx context.Context, tx repository.TxRepos, productID string, qty int) error {
	if p.cfg.AllowNegativeStock {
		return nil
	}
	lvl, err := tx.Stock.GetForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	current := 0
	if lvl != nil {
		current = lvl.TotalQuantity
	}
	if current < qty {
		return domain.InsufficientStock(productID, current, qty)
	}
	return nil
}

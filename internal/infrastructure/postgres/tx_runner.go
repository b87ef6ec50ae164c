package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

var _ repository.SnapshotRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + FOR UPDATE).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// RunSnapshot abre una transacción REPEATABLE READ de sólo lectura: todas las consultas
// de fn ven la misma instantánea aunque otras transacciones confirmen en el medio.
func (r *TxRunner) RunSnapshot(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(tx repository.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return mapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr("commit transaction", err)
	}
	return nil
}

// NewRepos arma los repositorios sobre q (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Products:     NewProductRepository(q),
		Stock:        NewStockRepository(q),
		Orders:       NewOrderRepository(q),
		Fulfillments: NewFulfillmentRepository(q),
		Entries:      NewEntryRepository(q),
		Dispatches:   NewDispatchRepository(q),
		Registry:     NewRegistryRepository(q),
		Outbox:       NewOutboxRepository(q),
	}
}

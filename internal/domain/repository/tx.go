package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products     ProductRepository
	Stock        StockRepository
	Orders       OrderRepository
	Fulfillments FulfillmentRepository
	Entries      EntryRepository
	Dispatches   DispatchRepository
	Registry     RegistryRepository
	Outbox       OutboxRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
// Todas las escrituras hechas con los repos de TxRepos se confirman juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx TxRepos) error) error
}

// SnapshotRunner ejecuta fn en una transacción de sólo lectura donde todas las consultas
// ven la misma instantánea. Lo usan las lecturas que cruzan varias tablas.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context, fn func(tx TxRepos) error) error
}

package reconciliation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jhoicas/estoque-cd/internal/application/catalog"
	"github.com/jhoicas/estoque-cd/internal/application/ordering"
	"github.com/jhoicas/estoque-cd/internal/application/retry"
	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
)

var fastRetry = retry.Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

type PolicySuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	catalog *catalog.Service
	orders  *ordering.Service
	policy  *Policy
	product string
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewSeeded()
	repos := s.store.Repos()
	s.catalog = catalog.NewService(s.store, repos.Products, repos.Registry, fastRetry, nil)
	s.orders = ordering.NewService(s.store, repos.Orders, fastRetry, nil)
	s.policy = NewPolicy(s.store, repos, Config{AllowNegativeStock: true}, fastRetry, nil, nil)

	res, err := s.catalog.ResolveOrCreate(s.ctx, catalog.ProductInput{EAN: "123", Reference: "R1", Name: "Caneta", Sector: "Geral"})
	s.Require().NoError(err)
	s.product = res.ProductID
}

func (s *PolicySuite) newOrder(qty int) string {
	id, err := s.orders.Create(s.ctx, ordering.CreateInput{Store: "S1", ProductID: s.product, RequestedQuantity: qty, RequestedBy: "alice"})
	s.Require().NoError(err)
	return id
}

func (s *PolicySuite) stock() int {
	lvl, err := s.store.Repos().Stock.Get(s.ctx, s.product)
	s.Require().NoError(err)
	return lvl.TotalQuantity
}

func (s *PolicySuite) TestRecordEntryAndDispatch() {
	cost := decimal.RequireFromString("2.50")
	e, err := s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: s.product, Quantity: 50, UnitCost: &cost})
	s.Require().NoError(err)
	s.Equal(50, e.Quantity)

	d, err := s.policy.RecordDispatch(s.ctx, DispatchInput{Unit: "mdc - carioca", ProductID: s.product, Quantity: 20, OutBy: "bob"})
	s.Require().NoError(err)
	s.Equal("MDC - Carioca", d.UnitName)
	s.Equal(30, s.stock())

	entries, err := s.policy.ListEntries(s.ctx, s.product)
	s.Require().NoError(err)
	s.Len(entries, 1)
	dispatches, err := s.policy.ListDispatches(s.ctx, s.product)
	s.Require().NoError(err)
	s.Require().Len(dispatches, 1)
	s.Equal("MDC - Carioca", dispatches[0].UnitName)
}

func (s *PolicySuite) TestRecordDispatch_UnknownUnitHasNoEffect() {
	_, err := s.policy.RecordDispatch(s.ctx, DispatchInput{Unit: "Loja Fantasma", ProductID: s.product, Quantity: 1, OutBy: "bob"})
	s.ErrorIs(err, domain.ErrUnknownUnit)
	s.Equal(0, s.stock())
}

func (s *PolicySuite) TestValidationBeforeTransaction() {
	_, err := s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: s.product, Quantity: 0})
	s.ErrorIs(err, domain.ErrInvalidQuantity)
	_, err = s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "", ProductID: s.product, Quantity: 1})
	s.ErrorIs(err, domain.ErrValidation)
	neg := decimal.NewFromInt(-1)
	_, err = s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: s.product, Quantity: 1, UnitCost: &neg})
	s.ErrorIs(err, domain.ErrValidation)
	_, err = s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: "nope", Quantity: 1})
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.policy.RecordDispatch(s.ctx, DispatchInput{Unit: "MDC - CD", ProductID: s.product, Quantity: -2, OutBy: "bob"})
	s.ErrorIs(err, domain.ErrInvalidQuantity)
	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: "x", Quantity: 0, FulfilledBy: "bob"})
	s.ErrorIs(err, domain.ErrInvalidQuantity)
	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: "x", Quantity: 1})
	s.ErrorIs(err, domain.ErrValidation)
	s.Equal(0, s.stock())
}

func (s *PolicySuite) TestFulfillOrder_Lifecycle() {
	id := s.newOrder(10)

	res, err := s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 4, FulfilledBy: "bob"})
	s.Require().NoError(err)
	s.Equal(entity.OrderPartial, res.Order.Status)
	s.Equal(6, res.Order.Pending())
	s.Equal(-4, res.Stock)

	res, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 6, FulfilledBy: "bob"})
	s.Require().NoError(err)
	s.Equal(entity.OrderFulfilled, res.Order.Status)
	s.Equal(0, res.Order.Pending())

	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 1, FulfilledBy: "bob"})
	s.Require().ErrorIs(err, domain.ErrExceedsPending)
	maxAllowed, ok := domain.MaxAllowedOf(err)
	s.True(ok)
	s.Equal(0, maxAllowed)
	s.Contains(err.Error(), "máximo permitido = 0")

	hist, err := s.policy.CollectHistory(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(hist, 2)
	s.Equal(4, hist[0].FulfilledQuantity)
	s.Equal(6, hist[1].FulfilledQuantity)
	s.Equal(-10, s.stock())
}

func (s *PolicySuite) TestFulfillOrder_ExceedsLeavesStateUnchanged() {
	id := s.newOrder(7)
	_, err := s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 8, FulfilledBy: "bob"})
	s.Require().ErrorIs(err, domain.ErrExceedsPending)
	maxAllowed, _ := domain.MaxAllowedOf(err)
	s.Equal(7, maxAllowed)

	o, err := s.orders.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, o.DeliveredQuantity)
	s.Equal(entity.OrderPending, o.Status)
	s.Equal(0, s.stock())
}

func (s *PolicySuite) TestFulfillOrder_NotFoundAndCancelled() {
	_, err := s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: "nope", Quantity: 1, FulfilledBy: "bob"})
	s.ErrorIs(err, domain.ErrNotFound)

	id := s.newOrder(5)
	_, err = s.orders.Cancel(s.ctx, id, "admin")
	s.Require().NoError(err)
	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 1, FulfilledBy: "bob"})
	s.ErrorIs(err, domain.ErrOrderCancelled)
	s.Equal(0, s.stock())
}

func (s *PolicySuite) TestFulfillOrder_IdempotencyKey() {
	id := s.newOrder(10)
	in := FulfillInput{OrderID: id, Quantity: 3, FulfilledBy: "bob", RequestID: "req-1"}

	first, err := s.policy.FulfillOrder(s.ctx, in)
	s.Require().NoError(err)
	s.False(first.Replayed)

	again, err := s.policy.FulfillOrder(s.ctx, in)
	s.Require().NoError(err)
	s.True(again.Replayed)
	s.Equal(first.Fulfillment.ID, again.Fulfillment.ID)
	s.Equal(3, again.Order.DeliveredQuantity)
	s.Equal(-3, s.stock())

	other := s.newOrder(2)
	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: other, Quantity: 1, FulfilledBy: "bob", RequestID: "req-1"})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *PolicySuite) TestFloorEnforcedWhenConfigured() {
	repos := s.store.Repos()
	strict := NewPolicy(s.store, repos, Config{AllowNegativeStock: false}, fastRetry, nil, nil)
	_, err := strict.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: s.product, Quantity: 5})
	s.Require().NoError(err)

	_, err = strict.RecordDispatch(s.ctx, DispatchInput{Unit: "MDC - CD", ProductID: s.product, Quantity: 6, OutBy: "bob"})
	s.ErrorIs(err, domain.ErrInsufficientStock)

	id := s.newOrder(10)
	_, err = strict.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 6, FulfilledBy: "bob"})
	s.ErrorIs(err, domain.ErrInsufficientStock)
	_, err = strict.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 5, FulfilledBy: "bob"})
	s.NoError(err)
	s.Equal(0, s.stock())
}

func (s *PolicySuite) TestAuditIsBalanced() {
	_, err := s.policy.RecordEntry(s.ctx, EntryInput{Supplier: "Acme", ProductID: s.product, Quantity: 50})
	s.Require().NoError(err)
	_, err = s.policy.RecordDispatch(s.ctx, DispatchInput{Unit: "MDC - CD", ProductID: s.product, Quantity: 20, OutBy: "bob"})
	s.Require().NoError(err)
	id := s.newOrder(10)
	_, err = s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 4, FulfilledBy: "bob"})
	s.Require().NoError(err)

	a, err := s.policy.AuditProduct(s.ctx, s.product)
	s.Require().NoError(err)
	s.Equal(50, a.Entries)
	s.Equal(20, a.Dispatches)
	s.Equal(4, a.Fulfilled)
	s.Equal(4, a.Delivered)
	s.Equal(26, a.Ledger)
	s.True(a.Balanced())
}

func (s *PolicySuite) TestAuditReadsOneSnapshot() {
	runner := &snapshotCounter{Store: s.store}
	policy := NewPolicy(runner, s.store.Repos(), Config{AllowNegativeStock: true}, fastRetry, nil, nil)

	_, err := policy.AuditProduct(s.ctx, s.product)
	s.Require().NoError(err)
	s.Equal(1, runner.snapshots)
}

func TestAudit_Balanced(t *testing.T) {
	assert.True(t, Audit{Expected: 6, Ledger: 6, Fulfilled: 4, Delivered: 4}.Balanced())
	assert.False(t, Audit{Expected: 6, Ledger: 5, Fulfilled: 4, Delivered: 4}.Balanced())
	assert.False(t, Audit{Expected: 6, Ledger: 6, Fulfilled: 4, Delivered: 6}.Balanced())
}

// snapshotCounter cuenta las lecturas hechas con RunSnapshot.
type snapshotCounter struct {
	*memory.Store
	snapshots int
}

func (r *snapshotCounter) RunSnapshot(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	r.snapshots++
	return r.Store.RunSnapshot(ctx, fn)
}

func (s *PolicySuite) TestOutboxEventsWrittenWithMutations() {
	id := s.newOrder(2)
	_, err := s.policy.FulfillOrder(s.ctx, FulfillInput{OrderID: id, Quantity: 2, FulfilledBy: "bob"})
	s.Require().NoError(err)

	events, err := s.store.Repos().Outbox.FindUnpublished(s.ctx, 0)
	s.Require().NoError(err)
	var types []string
	for _, ev := range events {
		types = append(types, ev.EventType)
	}
	s.Equal([]string{entity.EventProductCreated, entity.EventOrderCreated, entity.EventOrderFulfilled}, types)
}

// failingStock hace fallar ApplyDelta después de que la atención y el pedido ya se escribieron.
type failingStock struct {
	repository.StockRepository
	err error
}

func (f failingStock) ApplyDelta(context.Context, string, int, time.Time) (int, error) {
	return 0, f.err
}

type failingRunner struct {
	inner repository.TxRunner
	err   error
}

func (r failingRunner) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	return r.inner.Run(ctx, func(tx repository.TxRepos) error {
		tx.Stock = failingStock{StockRepository: tx.Stock, err: r.err}
		return fn(tx)
	})
}

func TestFulfillOrder_PartialFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	repos := store.Repos()
	cat := catalog.NewService(store, repos.Products, repos.Registry, fastRetry, nil)
	orders := ordering.NewService(store, repos.Orders, fastRetry, nil)
	res, err := cat.ResolveOrCreate(ctx, catalog.ProductInput{EAN: "1", Name: "Caneta", Sector: "Geral"})
	require.NoError(t, err)
	id, err := orders.Create(ctx, ordering.CreateInput{Store: "S1", ProductID: res.ProductID, RequestedQuantity: 10, RequestedBy: "alice"})
	require.NoError(t, err)

	boom := domain.Persistence("apply delta", errors.New("disk full"))
	policy := NewPolicy(failingRunner{inner: store, err: boom}, repos, Config{AllowNegativeStock: true}, fastRetry, nil, nil)

	_, err = policy.FulfillOrder(ctx, FulfillInput{OrderID: id, Quantity: 4, FulfilledBy: "bob"})
	require.ErrorIs(t, err, domain.ErrPersistence)

	o, err := orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, o.DeliveredQuantity)
	assert.Equal(t, entity.OrderPending, o.Status)
	hist, err := policy.CollectHistory(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

// conflictingRunner devuelve ConcurrencyConflict las primeras n veces.
type conflictingRunner struct {
	inner repository.TxRunner
	mu    sync.Mutex
	left  int
	calls int
}

func (r *conflictingRunner) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.left > 0
	if fail {
		r.left--
	}
	r.mu.Unlock()
	if fail {
		return domain.ConcurrencyConflict(errors.New("could not serialize access"))
	}
	return r.inner.Run(ctx, fn)
}

type recordingMetrics struct {
	mu      sync.Mutex
	retries int
	ops     map[string]int
}

func (m *recordingMetrics) ObserveRetry(string) {
	m.mu.Lock()
	m.retries++
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveOperation(op string, err error, _ time.Duration) {
	m.mu.Lock()
	if m.ops == nil {
		m.ops = map[string]int{}
	}
	if err == nil {
		m.ops[op]++
	}
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveStockDelta(string, int) {}

func TestRetriesConcurrencyConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	repos := store.Repos()
	cat := catalog.NewService(store, repos.Products, repos.Registry, fastRetry, nil)
	res, err := cat.ResolveOrCreate(ctx, catalog.ProductInput{EAN: "1", Name: "Caneta", Sector: "Geral"})
	require.NoError(t, err)

	runner := &conflictingRunner{inner: store, left: 2}
	m := &recordingMetrics{}
	policy := NewPolicy(runner, repos, Config{AllowNegativeStock: true}, fastRetry, m, nil)

	_, err = policy.RecordEntry(ctx, EntryInput{Supplier: "Acme", ProductID: res.ProductID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 2, m.retries)
	assert.Equal(t, 1, m.ops[OpRecordEntry])

	runner.left = 100
	_, err = policy.RecordEntry(ctx, EntryInput{Supplier: "Acme", ProductID: res.ProductID, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	lvl, err := repos.Stock.Get(ctx, res.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 5, lvl.TotalQuantity)
}

func TestConcurrentFulfillmentsNeverOverDeliver(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	repos := store.Repos()
	cat := catalog.NewService(store, repos.Products, repos.Registry, fastRetry, nil)
	orders := ordering.NewService(store, repos.Orders, fastRetry, nil)
	policy := NewPolicy(store, repos, Config{AllowNegativeStock: true}, fastRetry, nil, nil)

	res, err := cat.ResolveOrCreate(ctx, catalog.ProductInput{EAN: "1", Name: "Caneta", Sector: "Geral"})
	require.NoError(t, err)
	id, err := orders.Create(ctx, ordering.CreateInput{Store: "S1", ProductID: res.ProductID, RequestedQuantity: 10, RequestedBy: "alice"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = policy.FulfillOrder(ctx, FulfillInput{OrderID: id, Quantity: 6, FulfilledBy: "bob"})
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrExceedsPending) || errors.Is(err, domain.ErrConcurrencyConflict), err)
	}
	assert.Equal(t, 1, ok)

	o, err := orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, o.DeliveredQuantity)
	lvl, err := repos.Stock.Get(ctx, res.ProductID)
	require.NoError(t, err)
	assert.Equal(t, -6, lvl.TotalQuantity)
}

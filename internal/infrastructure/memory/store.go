// Package memory implementa los puertos de repositorio en memoria (modo demo y tests).
// Las transacciones se serializan con un mutex global y se revierten restaurando una copia del estado.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var (
	_ repository.TxRunner       = (*Store)(nil)
	_ repository.SnapshotRunner = (*Store)(nil)
)

type state struct {
	products     map[string]entity.Product
	sectors      []entity.Sector
	units        []entity.Unit
	stock        map[string]entity.StockLevel
	orders       map[string]entity.Order
	orderSeq     []string
	fulfillments []entity.Fulfillment
	entries      []entity.Entry
	dispatches   []entity.Dispatch
	outbox       []entity.OutboxEvent
	users        map[string]entity.User
}

func newState() *state {
	return &state{
		products: map[string]entity.Product{},
		stock:    map[string]entity.StockLevel{},
		orders:   map[string]entity.Order{},
		users:    map[string]entity.User{},
	}
}

// clone copia superficial de cada colección; los valores almacenados nunca se mutan en sitio.
func (s *state) clone() *state {
	return &state{
		products:     maps.Clone(s.products),
		sectors:      slices.Clone(s.sectors),
		units:        slices.Clone(s.units),
		stock:        maps.Clone(s.stock),
		orders:       maps.Clone(s.orders),
		orderSeq:     slices.Clone(s.orderSeq),
		fulfillments: slices.Clone(s.fulfillments),
		entries:      slices.Clone(s.entries),
		dispatches:   slices.Clone(s.dispatches),
		outbox:       slices.Clone(s.outbox),
		users:        maps.Clone(s.users),
	}
}

// Store almacenamiento en memoria. Implementa repository.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un store vacío (sin sectores ni unidades).
func New() *Store {
	return &Store{st: newState()}
}

// NewSeeded crea un store con los sectores y unidades por defecto.
func NewSeeded() *Store {
	s := New()
	now := time.Now()
	for _, name := range entity.DefaultSectors {
		s.st.sectors = append(s.st.sectors, entity.Sector{ID: uuid.New().String(), Name: name, CreatedAt: now})
	}
	for _, name := range entity.DefaultUnits {
		s.st.units = append(s.st.units, entity.Unit{ID: uuid.New().String(), Name: name, CreatedAt: now})
	}
	return s
}

// Run ejecuta fn con acceso exclusivo al estado. Si fn devuelve error (o entra en pánico)
// el estado vuelve a la copia tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(s.repos(true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// RunSnapshot ejecuta fn bajo el mismo lock exclusivo que Run, así que ya ve un estado fijo.
func (s *Store) RunSnapshot(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	return s.Run(ctx, fn)
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el lock por separado.
func (s *Store) Repos() repository.TxRepos {
	return s.repos(false)
}

// Users repositorio de usuarios (fuera de transacción).
func (s *Store) Users() repository.UserRepository {
	return userRepo{handle{s: s}}
}

func (s *Store) repos(inTx bool) repository.TxRepos {
	h := handle{s: s, inTx: inTx}
	return repository.TxRepos{
		Products:     productRepo{h},
		Stock:        stockRepo{h},
		Orders:       orderRepo{h},
		Fulfillments: fulfillmentRepo{h},
		Entries:      entryRepo{h},
		Dispatches:   dispatchRepo{h},
		Registry:     registryRepo{h},
		Outbox:       outboxRepo{h},
	}
}

type handle struct {
	s    *Store
	inTx bool
}

// with ejecuta fn sobre el estado; fuera de transacción toma el lock.
func (h handle) with(fn func(st *state)) {
	if !h.inTx {
		h.s.mu.Lock()
		defer h.s.mu.Unlock()
	}
	fn(h.s.st)
}

func sectorName(st *state, id string) string {
	for _, sc := range st.sectors {
		if sc.ID == id {
			return sc.Name
		}
	}
	return ""
}

func unitName(st *state, id string) string {
	for _, u := range st.units {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func productStock(st *state, p entity.Product) entity.ProductStock {
	ps := entity.ProductStock{
		ProductID: p.ID,
		EAN:       p.EAN,
		Reference: p.Reference,
		Name:      p.Name,
		Sector:    sectorName(st, p.SectorID),
	}
	if lvl, ok := st.stock[p.ID]; ok {
		ps.Quantity = lvl.TotalQuantity
		ps.LastUpdated = lvl.LastUpdated
	}
	return ps
}

func sortByName(list []entity.ProductStock) {
	slices.SortStableFunc(list, func(a, b entity.ProductStock) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
}

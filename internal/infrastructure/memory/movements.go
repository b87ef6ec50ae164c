package memory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var (
	_ repository.EntryRepository    = entryRepo{}
	_ repository.DispatchRepository = dispatchRepo{}
	_ repository.RegistryRepository = registryRepo{}
	_ repository.OutboxRepository   = outboxRepo{}
)

type entryRepo struct{ handle }

func (r entryRepo) Create(_ context.Context, e *entity.Entry) error {
	r.with(func(st *state) { st.entries = append(st.entries, *e) })
	return nil
}

func (r entryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Entry, error) {
	var out []*entity.Entry
	r.with(func(st *state) {
		for _, e := range st.entries {
			if e.ProductID == productID {
				out = append(out, &e)
			}
		}
	})
	return out, nil
}

type dispatchRepo struct{ handle }

func (r dispatchRepo) Create(_ context.Context, d *entity.Dispatch) error {
	r.with(func(st *state) { st.dispatches = append(st.dispatches, *d) })
	return nil
}

func (r dispatchRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Dispatch, error) {
	var out []*entity.Dispatch
	r.with(func(st *state) {
		for _, d := range st.dispatches {
			if d.ProductID == productID {
				d.UnitName = unitName(st, d.UnitID)
				out = append(out, &d)
			}
		}
	})
	return out, nil
}

type registryRepo struct{ handle }

func (r registryRepo) ListSectors(_ context.Context) ([]entity.Sector, error) {
	var out []entity.Sector
	r.with(func(st *state) { out = append(out, st.sectors...) })
	return out, nil
}

func (r registryRepo) ListUnits(_ context.Context) ([]entity.Unit, error) {
	var out []entity.Unit
	r.with(func(st *state) { out = append(out, st.units...) })
	return out, nil
}

func (r registryRepo) AddSector(_ context.Context, s *entity.Sector) error {
	var err error
	r.with(func(st *state) {
		for _, cur := range st.sectors {
			if cur.Name == s.Name {
				err = domain.ErrDuplicate
				return
			}
		}
		st.sectors = append(st.sectors, *s)
	})
	return err
}

func (r registryRepo) AddUnit(_ context.Context, u *entity.Unit) error {
	var err error
	r.with(func(st *state) {
		for _, cur := range st.units {
			if cur.Name == u.Name {
				err = domain.ErrDuplicate
				return
			}
		}
		st.units = append(st.units, *u)
	})
	return err
}

type outboxRepo struct{ handle }

func (r outboxRepo) Append(_ context.Context, ev *entity.OutboxEvent) error {
	r.with(func(st *state) { st.outbox = append(st.outbox, *ev) })
	return nil
}

func (r outboxRepo) FindUnpublished(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	r.with(func(st *state) {
		for _, ev := range st.outbox {
			if ev.PublishedAt != nil {
				continue
			}
			out = append(out, &ev)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

func (r outboxRepo) MarkPublished(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(ev *entity.OutboxEvent) { ev.PublishedAt = &at })
}

func (r outboxRepo) MarkFailed(_ context.Context, id string, reason string) error {
	return r.update(id, func(ev *entity.OutboxEvent) {
		ev.Attempts++
		ev.LastError = reason
	})
}

func (r outboxRepo) update(id string, fn func(ev *entity.OutboxEvent)) error {
	found := false
	r.with(func(st *state) {
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				fn(&st.outbox[i])
				found = true
				return
			}
		}
	})
	if !found {
		return domain.NotFound("evento %s no encontrado", id)
	}
	return nil
}

package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.UserRepository = userRepo{}

type userRepo struct{ handle }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	var err error
	r.with(func(st *state) {
		for _, cur := range st.users {
			if cur.Username == u.Username {
				err = fmt.Errorf("usuario %q: %w", u.Username, domain.ErrDuplicate)
				return
			}
		}
		st.users[u.ID] = *u
	})
	return err
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.with(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	r.with(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r userRepo) Deactivate(_ context.Context, id string) error {
	var err error
	r.with(func(st *state) {
		u, ok := st.users[id]
		if !ok {
			err = domain.NotFound("usuario %s no encontrado", id)
			return
		}
		u.Active = false
		st.users[id] = u
	})
	return err
}

func (r userRepo) List(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	r.with(func(st *state) {
		for _, u := range st.users {
			out = append(out, &u)
		}
	})
	slices.SortFunc(out, func(a, b *entity.User) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

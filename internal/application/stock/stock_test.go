package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
)

func seed(t *testing.T, store *memory.Store, qty map[string]int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Run(ctx, func(tx repository.TxRepos) error {
		for name, q := range qty {
			id := "p-" + name
			if err := tx.Products.Create(ctx, &entity.Product{ID: id, Reference: name, Name: name}); err != nil {
				return err
			}
			if _, err := tx.Stock.ApplyDelta(ctx, id, q, time.Now()); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestService_Views(t *testing.T) {
	store := memory.New()
	seed(t, store, map[string]int{"Agenda": 3, "Borracha": 0, "Caderno": 40, "Durex": -5, "Estojo": 9})
	repos := store.Repos()
	svc := NewService(repos.Stock, repos.Products, 10)
	ctx := context.Background()

	avail, err := svc.CurrentForOrders(ctx)
	require.NoError(t, err)
	var names []string
	for _, ps := range avail {
		names = append(names, ps.Name)
	}
	assert.Equal(t, []string{"Agenda", "Caderno", "Estojo"}, names)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	low, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Agenda", low[0].Name)
	assert.Equal(t, "Estojo", low[1].Name)

	low, err = svc.LowStock(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, low, 1)
}

func TestService_Current(t *testing.T) {
	store := memory.New()
	seed(t, store, map[string]int{"Durex": -5})
	repos := store.Repos()
	svc := NewService(repos.Stock, repos.Products, 0)
	ctx := context.Background()

	q, err := svc.Current(ctx, "p-Durex")
	require.NoError(t, err)
	assert.Equal(t, -5, q)

	_, err = svc.Current(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

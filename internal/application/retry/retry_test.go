package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/estoque-cd/internal/domain"
)

type countingObserver struct{ n int }

func (o *countingObserver) ObserveRetry(string) { o.n++ }

func fastPolicy(attempts int, obs Observer) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Observer: obs}
}

func TestDo_RetriesConflictsUntilSuccess(t *testing.T) {
	obs := &countingObserver{}
	calls := 0
	err := fastPolicy(5, obs).Do(context.Background(), "fulfill", func() error {
		calls++
		if calls < 3 {
			return domain.ConcurrencyConflict(errors.New("40001"))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, obs.n)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy(3, nil).Do(context.Background(), "fulfill", func() error {
		calls++
		return domain.ConcurrencyConflict(errors.New("40P01"))
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := fastPolicy(5, nil).Do(context.Background(), "fulfill", func() error {
		calls++
		return domain.ExceedsPending(3, 1)
	})
	assert.ErrorIs(t, err, domain.ErrExceedsPending)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy(10, nil).Do(ctx, "fulfill", func() error {
		calls++
		cancel()
		return domain.ConcurrencyConflict(errors.New("40001"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

// Package retry reintenta operaciones transaccionales que fallan por conflicto de concurrencia.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

// Observer recibe cada reintento (métricas).
type Observer interface {
	ObserveRetry(op string)
}

// Policy backoff exponencial con jitter y número de intentos acotado.
// Sólo se reintentan errores de tipo ConcurrencyConflict; el resto se devuelve en el primer intento.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Log         *logger.Logger
	Observer    Observer
}

// Do ejecuta fn hasta MaxAttempts veces. Agotados los intentos devuelve el último conflicto.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = time.Millisecond
	}
	eb.MaxInterval = p.MaxDelay
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.5
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		if p.Log != nil {
			p.Log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("wait", wait).Msg("conflicto de concurrencia, reintentando")
		}
		if p.Observer != nil {
			p.Observer.ObserveRetry(op)
		}
	}
	return backoff.RetryNotify(operation, b, notify)
}

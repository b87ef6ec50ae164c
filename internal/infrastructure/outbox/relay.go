// Package outbox lee periódicamente los eventos pendientes del outbox y los publica.
package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
	"github.com/jhoicas/estoque-cd/pkg/logger"
)

// Publisher destino de los eventos (Kafka en producción).
type Publisher interface {
	Publish(ctx context.Context, ev *entity.OutboxEvent) error
}

// Observer métricas opcionales del relay.
type Observer interface {
	ObserveOutboxBatch(pending int)
	ObserveOutboxPublish(eventType string, err error)
}

// Config intervalo de sondeo y tamaño del lote.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay publica los eventos en orden de creación; un evento fallido queda pendiente
// con Attempts y LastError actualizados y se reintenta en el siguiente ciclo.
type Relay struct {
	repo      repository.OutboxRepository
	publisher Publisher
	observer  Observer
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRelay crea el relay. observer puede ser nil.
func NewRelay(repo repository.OutboxRepository, pub Publisher, observer Observer, log *logger.Logger, cfg Config) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		repo:      repo,
		publisher: pub,
		observer:  observer,
		log:       log.Component("outbox"),
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}
}

// Start lanza el bucle de sondeo en una goroutine.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("relay ya está en ejecución")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.log.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("relay de outbox iniciado")
	go r.loop(ctx, r.stopCh, r.doneCh)
	return nil
}

// Stop detiene el bucle y espera a que termine el ciclo en curso.
func (r *Relay) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return errors.New("relay no está en ejecución")
	}
	stop, done := r.stopCh, r.doneCh
	r.running = false
	r.mu.Unlock()

	close(stop)
	<-done
	r.log.Info().Msg("relay de outbox detenido")
	return nil
}

func (r *Relay) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error().Err(err).Msg("no se pudo leer el outbox")
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce procesa un lote y devuelve cuántos eventos se publicaron.
// Se detiene en el primer fallo para no publicar fuera de orden.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.repo.FindUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if r.observer != nil {
		r.observer.ObserveOutboxBatch(len(events))
	}
	published := 0
	for _, ev := range events {
		pubErr := r.publisher.Publish(ctx, ev)
		if r.observer != nil {
			r.observer.ObserveOutboxPublish(ev.EventType, pubErr)
		}
		if pubErr != nil {
			r.log.Warn().Err(pubErr).
				Str("event_id", ev.ID).
				Str("event_type", ev.EventType).
				Int("attempts", ev.Attempts+1).
				Msg("fallo al publicar evento")
			if err := r.repo.MarkFailed(ctx, ev.ID, pubErr.Error()); err != nil {
				return published, err
			}
			return published, nil
		}
		if err := r.repo.MarkPublished(ctx, ev.ID, r.now()); err != nil {
			return published, err
		}
		published++
		r.log.Debug().
			Str("event_id", ev.ID).
			Str("event_type", ev.EventType).
			Str("aggregate_id", ev.AggregateID).
			Msg("evento publicado")
	}
	return published, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo tabla outbox_events.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Append inserta el evento dentro de la transacción del llamador.
func (r *OutboxRepo) Append(ctx context.Context, ev *entity.OutboxEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.AggregateType, ev.AggregateID, ev.EventType, []byte(ev.Payload), ev.CreatedAt,
	)
	return mapErr("insert outbox event", err)
}

// FindUnpublished devuelve los pendientes más antiguos primero.
func (r *OutboxRepo) FindUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, attempts, last_error
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr("find unpublished events", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEvent
	for rows.Next() {
		var ev entity.OutboxEvent
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.EventType, &payload,
			&ev.CreatedAt, &ev.Attempts, &ev.LastError); err != nil {
			return nil, mapErr("scan outbox event", err)
		}
		ev.Payload = payload
		list = append(list, &ev)
	}
	return list, mapErr("iterate outbox events", rows.Err())
}

// MarkPublished marca el evento como publicado.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, "mark event published",
		`UPDATE outbox_events SET published_at = $2 WHERE id = $1`, id, at)
}

// MarkFailed incrementa los intentos y guarda el último error.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.update(ctx, "mark event failed",
		`UPDATE outbox_events SET attempts = attempts + 1, last_error = $2 WHERE id = $1`, id, reason)
}

func (r *OutboxRepo) update(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("evento %v no encontrado", args[0])
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// OutboxRepository cola de eventos escrita dentro de las transacciones del núcleo.
type OutboxRepository interface {
	Append(ctx context.Context, event *entity.OutboxEvent) error
	FindUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

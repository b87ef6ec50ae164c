package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tipos de evento publicados vía outbox.
const (
	EventProductCreated   = "product.created"
	EventOrderCreated     = "order.created"
	EventOrderFulfilled   = "order.fulfilled"
	EventOrderCancelled   = "order.cancelled"
	EventEntryRecorded    = "entry.recorded"
	EventDispatchRecorded = "dispatch.recorded"
)

// OutboxEvent evento escrito en la misma transacción que la mutación que lo origina.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Attempts      int
	LastError     string
}

// Tipos de agregado.
const (
	AggregateProduct  = "product"
	AggregateOrder    = "order"
	AggregateEntry    = "entry"
	AggregateDispatch = "dispatch"
)

// NewOutboxEvent serializa payload a JSON y arma un evento pendiente de publicar.
func NewOutboxEvent(aggregateType, aggregateID, eventType string, payload any, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       raw,
		CreatedAt:     now,
	}, nil
}

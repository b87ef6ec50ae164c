// Package kafka publica los eventos del outbox en un tópico Kafka.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

// Config parámetros del writer.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// messageWriter es la parte de *kafka.Writer que usa el productor.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer escribe un mensaje por evento; la clave es el id del agregado
// para conservar el orden por pedido o producto dentro de la partición.
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer crea el writer síncrono con RequireAll.
func NewProducer(cfg Config) *Producer {
	timeout := cfg.BatchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           timeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &Producer{writer: w, topic: cfg.Topic}
}

// Message arma el mensaje Kafka de un evento del outbox.
func Message(ev *entity.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(ev.AggregateID),
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(ev.ID)},
			{Key: "event-type", Value: []byte(ev.EventType)},
			{Key: "aggregate-type", Value: []byte(ev.AggregateType)},
			{Key: "occurred-at", Value: []byte(ev.CreatedAt.UTC().Format(time.RFC3339Nano))},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: ev.CreatedAt,
	}
}

// Publish envía el evento y espera la confirmación del broker.
func (p *Producer) Publish(ctx context.Context, ev *entity.OutboxEvent) error {
	if err := p.writer.WriteMessages(ctx, Message(ev)); err != nil {
		return fmt.Errorf("publicar %s en %s: %w", ev.EventType, p.topic, err)
	}
	return nil
}

// Close libera el writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-cd/internal/domain/entity"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent(t *testing.T) *entity.OutboxEvent {
	t.Helper()
	ev, err := entity.NewOutboxEvent(entity.AggregateOrder, "order-1", entity.EventOrderFulfilled,
		map[string]int{"quantity": 3}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return ev
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessage_KeyAndHeaders(t *testing.T) {
	ev := sampleEvent(t)

	msg := Message(ev)

	assert.Equal(t, "order-1", string(msg.Key))
	assert.JSONEq(t, `{"quantity":3}`, string(msg.Value))
	assert.Equal(t, ev.ID, header(msg, "event-id"))
	assert.Equal(t, entity.EventOrderFulfilled, header(msg, "event-type"))
	assert.Equal(t, entity.AggregateOrder, header(msg, "aggregate-type"))
}

func TestPublish_WritesOneMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "estoque.events"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent(t)))
	require.Len(t, w.msgs, 1)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: boom}, topic: "estoque.events"}

	err := p.Publish(context.Background(), sampleEvent(t))

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "estoque.events")
}

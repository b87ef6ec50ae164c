package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-cd/internal/domain"
)

func TestObserveOperation_LabelsByKind(t *testing.T) {
	m := New()

	m.ObserveOperation("fulfill_order", nil, 10*time.Millisecond)
	m.ObserveOperation("fulfill_order", domain.ExceedsPending(5, 2), time.Millisecond)
	m.ObserveOperation("fulfill_order", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("fulfill_order", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("fulfill_order", "exceeds_pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("fulfill_order", "error")))
}

func TestObserveStockDelta_SplitsDirection(t *testing.T) {
	m := New()

	m.ObserveStockDelta("record_entry", 10)
	m.ObserveStockDelta("record_dispatch", -4)
	m.ObserveStockDelta("record_dispatch", 0)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.StockUnits.WithLabelValues("record_entry", "in")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StockUnits.WithLabelValues("record_dispatch", "out")))
}

func TestRetriesAndOutbox(t *testing.T) {
	m := New()

	m.ObserveRetry("record_entry")
	m.ObserveRetry("record_entry")
	m.ObserveOutboxBatch(3)
	m.ObserveOutboxPublish("order.created", nil)
	m.ObserveOutboxPublish("order.created", errors.New("broker down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Retries.WithLabelValues("record_entry")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxPending))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("order.created", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("order.created", "failure")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/api/stock", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "estoque_http_requests_total")
}

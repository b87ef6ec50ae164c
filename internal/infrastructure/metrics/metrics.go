// Package metrics expone los contadores Prometheus del servicio: HTTP, operaciones del
// ledger, reintentos por conflicto y publicación del outbox.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/estoque-cd/internal/domain"
)

const namespace = "estoque"

// Metrics agrupa los colectores registrados en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Retries           *prometheus.CounterVec
	StockUnits        *prometheus.CounterVec

	OutboxPublished *prometheus.CounterVec
	OutboxPending   prometheus.Gauge
}

// New crea y registra todos los colectores.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP en segundos",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	m.Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Operaciones de la política de reconciliación por resultado",
	}, []string{"operation", "result"})

	m.OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_operation_duration_seconds",
		Help:      "Duración de cada operación incluyendo reintentos",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	m.Retries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_conflict_retries_total",
		Help:      "Reintentos por conflicto de concurrencia",
	}, []string{"operation"})

	m.StockUnits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_total",
		Help:      "Unidades que entraron (in) o salieron (out) del ledger",
	}, []string{"operation", "direction"})

	m.OutboxPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Eventos del outbox publicados por tipo y resultado",
	}, []string{"event_type", "status"})

	m.OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outbox_pending",
		Help:      "Eventos pendientes en el último lote leído",
	})

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.Operations, m.OperationDuration, m.Retries, m.StockUnits,
		m.OutboxPublished, m.OutboxPending,
	)
	return m
}

// Registry expone el registry para pruebas.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest registra una petición completada. path es el patrón de la ruta.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveRetry cuenta un reintento.
func (m *Metrics) ObserveRetry(op string) {
	m.Retries.WithLabelValues(op).Inc()
}

// ObserveOperation registra el resultado; el label result es "ok" o el Kind del error.
func (m *Metrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	m.Operations.WithLabelValues(op, result(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveStockDelta acumula unidades por dirección.
func (m *Metrics) ObserveStockDelta(op string, delta int) {
	switch {
	case delta > 0:
		m.StockUnits.WithLabelValues(op, "in").Add(float64(delta))
	case delta < 0:
		m.StockUnits.WithLabelValues(op, "out").Add(float64(-delta))
	}
}

// ObserveOutboxBatch fija el gauge de pendientes.
func (m *Metrics) ObserveOutboxBatch(pending int) {
	m.OutboxPending.Set(float64(pending))
}

// ObserveOutboxPublish cuenta una publicación.
func (m *Metrics) ObserveOutboxPublish(eventType string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.OutboxPublished.WithLabelValues(eventType, status).Inc()
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	if k := domain.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}

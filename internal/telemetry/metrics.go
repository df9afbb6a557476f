package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry *prometheus.Registry

	rowsLoaded   prometheus.Gauge
	loadDuration prometheus.Gauge
	loadFailures prometheus.Counter
	queries      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		rowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "superstore",
			Name:      "dataset_rows",
			Help:      "Order records held in memory.",
		}),
		loadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "superstore",
			Name:      "dataset_load_seconds",
			Help:      "Wall time of the last dataset load.",
		}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "superstore",
			Name:      "dataset_load_failures_total",
			Help:      "Dataset loads that failed.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "superstore",
			Name:      "queries_total",
			Help:      "Summary queries served, by query and outcome.",
		}, []string{"query", "outcome"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "superstore",
			Name:      "query_duration_seconds",
			Help:      "Latency of summary queries.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"query"}),
	}
	reg.MustRegister(
		m.rowsLoaded, m.loadDuration, m.loadFailures, m.queries, m.queryLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveLoad(rows int, elapsed time.Duration) {
	m.rowsLoaded.Set(float64(rows))
	m.loadDuration.Set(elapsed.Seconds())
}

func (m *Metrics) LoadFailed() {
	m.loadFailures.Inc()
}

// ObserveQuery records one served query. outcome is "ok", "empty" or "error".
func (m *Metrics) ObserveQuery(query, outcome string, elapsed time.Duration) {
	m.queries.WithLabelValues(query, outcome).Inc()
	m.queryLatency.WithLabelValues(query).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

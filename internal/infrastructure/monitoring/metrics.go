package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	KeysCreated       *prometheus.CounterVec
	KeyGeneration     *prometheus.HistogramVec
	KeysDeleted       prometheus.Counter
	SweepRuns         *prometheus.CounterVec
	SweepTransitions  *prometheus.CounterVec
	PublishedKeys     prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
	JwksCacheRequests *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		KeysCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwksd_keys_created_total",
				Help: "Total number of keys created, by algorithm.",
			},
			[]string{"alg"},
		),
		KeyGeneration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jwksd_key_generation_seconds",
				Help:    "Key generation latency, by algorithm.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"alg"},
		),
		KeysDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jwksd_keys_deleted_total",
				Help: "Total number of keys soft deleted by request.",
			},
		),
		SweepRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwksd_sweep_runs_total",
				Help: "Total number of expiration sweep runs, by result.",
			},
			[]string{"result"},
		),
		SweepTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwksd_sweep_transitions_total",
				Help: "Total number of lifecycle transitions applied by the sweeper.",
			},
			[]string{"transition"},
		),
		PublishedKeys: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jwksd_published_keys",
				Help: "Number of keys in the currently published set.",
			},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwksd_http_requests_total",
				Help: "Total number of HTTP requests, by path and status.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jwksd_http_request_duration_seconds",
				Help:    "HTTP request latency, by path.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		JwksCacheRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwksd_jwks_cache_requests_total",
				Help: "Published set cache lookups, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordKeyCreated records a successful key creation and its generation latency.
func (m *Metrics) RecordKeyCreated(alg string, duration time.Duration) {
	m.KeysCreated.WithLabelValues(alg).Inc()
	m.KeyGeneration.WithLabelValues(alg).Observe(duration.Seconds())
}

// RecordKeyDeleted records a soft delete requested through the API.
func (m *Metrics) RecordKeyDeleted() {
	m.KeysDeleted.Inc()
}

// RecordSweepRun records a completed sweep run.
func (m *Metrics) RecordSweepRun(result string) {
	m.SweepRuns.WithLabelValues(result).Inc()
}

// RecordSweepTransition records a lifecycle transition applied by the sweeper.
func (m *Metrics) RecordSweepTransition(transition string) {
	m.SweepTransitions.WithLabelValues(transition).Inc()
}

// SetPublishedKeys updates the published set size gauge.
func (m *Metrics) SetPublishedKeys(n int) {
	m.PublishedKeys.Set(float64(n))
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(path, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, status).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordCacheLookup records a published set cache hit or miss.
func (m *Metrics) RecordCacheLookup(outcome string) {
	m.JwksCacheRequests.WithLabelValues(outcome).Inc()
}

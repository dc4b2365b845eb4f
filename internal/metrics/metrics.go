// Package metrics exports pipeline counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "digest"
	subsystem = "pipeline"
)

// Attempt outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeQuota     = "quota"
	OutcomeTransient = "transient"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeCancelled = "cancelled"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	chunkAttempts     *prometheus.CounterVec
	chunkFailures     prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	summarizeDuration *prometheus.HistogramVec
	backoffMultiplier prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.chunkAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunk_attempts_total",
			Help:      "Backend attempts per chunk by outcome",
		},
		[]string{"outcome"},
	)

	m.chunkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunk_failures_total",
			Help:      "Chunks dropped after exhausting retries",
		},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_lookups_total",
			Help:      "Summary cache lookups by result",
		},
		[]string{"result"},
	)

	m.summarizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "summarize_duration_seconds",
			Help:      "Wall time of one summarization call",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	m.backoffMultiplier = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backoff_multiplier",
			Help:      "Current rate limiter backoff multiplier",
		},
	)

	m.registry.MustRegister(
		m.chunkAttempts,
		m.chunkFailures,
		m.cacheLookups,
		m.summarizeDuration,
		m.backoffMultiplier,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.chunkAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveChunkFailure() {
	if m == nil {
		return
	}
	m.chunkFailures.Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSummarize(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.summarizeDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SetBackoffMultiplier(v float64) {
	if m == nil {
		return
	}
	m.backoffMultiplier.Set(v)
}

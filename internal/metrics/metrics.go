package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authentication Metrics
	AuthAttemptsTotal *prometheus.CounterVec
	AuthDuration      *prometheus.HistogramVec
	CacheLookupsTotal *prometheus.CounterVec

	// Provider Call Metrics
	ProviderCallsTotal     *prometheus.CounterVec
	ProviderCallDuration   *prometheus.HistogramVec
	TransportFailuresTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// If enabled=true, returns Prometheus-based Metrics.
// If enabled=false, returns NoopMetrics (zero overhead).
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		AuthAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"scheme", "result"}, // success, failure
		),
		AuthDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_duration_seconds",
				Help:    "Time taken to settle an authentication attempt",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scheme"},
		),
		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_cache_lookups_total",
				Help: "Total number of outcome cache lookups",
			},
			[]string{"scheme", "result"}, // hit, miss
		),
		ProviderCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_calls_total",
				Help: "Total number of calls to the identity provider",
			},
			[]string{"operation", "status"},
		),
		ProviderCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_call_duration_seconds",
				Help:    "Duration of identity provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		TransportFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_transport_failures_total",
				Help: "Total number of transport-level provider failures",
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}

// RecordAuthAttempt records a settled authentication attempt
func (m *Metrics) RecordAuthAttempt(scheme string, success bool, duration time.Duration) {
	result := resultFailure
	if success {
		result = resultSuccess
	}
	m.AuthAttemptsTotal.WithLabelValues(scheme, result).Inc()
	m.AuthDuration.WithLabelValues(scheme).Observe(duration.Seconds())
}

// RecordCacheLookup records an outcome cache lookup
func (m *Metrics) RecordCacheLookup(scheme string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(scheme, result).Inc()
}

// RecordProviderCall records a completed identity provider call
func (m *Metrics) RecordProviderCall(operation string, statusCode int, duration time.Duration) {
	m.ProviderCallsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	m.ProviderCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTransportFailure records a transport-level provider failure
func (m *Metrics) RecordTransportFailure(operation string) {
	m.TransportFailuresTotal.WithLabelValues(operation).Inc()
}

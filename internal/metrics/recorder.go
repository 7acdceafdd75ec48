package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authentication pipeline
	RecordAuthAttempt(scheme string, success bool, duration time.Duration)
	RecordCacheLookup(scheme string, hit bool)

	// Upstream provider calls
	RecordProviderCall(operation string, statusCode int, duration time.Duration)
	RecordTransportFailure(operation string)
}

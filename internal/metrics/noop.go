package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder.
// All methods are empty, providing zero overhead when metrics are disabled.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthAttempt(scheme string, success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordCacheLookup(scheme string, hit bool)                             {}
func (n *NoopMetrics) RecordProviderCall(operation string, statusCode int, duration time.Duration) {
}
func (n *NoopMetrics) RecordTransportFailure(operation string) {}

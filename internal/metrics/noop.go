package metrics

import "time"

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NoopMetrics is a Recorder that discards everything. Used when metrics are
// disabled and in tests.
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics { return &NoopMetrics{} }

func (n *NoopMetrics) RecordClientRegistered()                   {}
func (n *NoopMetrics) RecordLoginAttempt(string)                 {}
func (n *NoopMetrics) RecordCodeIssued()                         {}
func (n *NoopMetrics) RecordCodeExchange(string)                 {}
func (n *NoopMetrics) RecordTokenVerification(string)            {}
func (n *NoopMetrics) RecordUpstreamAuthDuration(float64)        {}
func (n *NoopMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
}

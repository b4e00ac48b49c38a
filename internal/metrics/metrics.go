package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Recorder is the metrics surface used by handlers and services. The no-op
// implementation keeps the hot path allocation-free when metrics are off.
type Recorder interface {
	RecordClientRegistered()
	RecordLoginAttempt(outcome string)
	RecordCodeIssued()
	RecordCodeExchange(outcome string)
	RecordTokenVerification(outcome string)
	RecordUpstreamAuthDuration(seconds float64)
	RecordHTTPRequest(method, path, status string, duration time.Duration)
}

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	ClientsRegisteredTotal  prometheus.Counter
	LoginAttemptsTotal      *prometheus.CounterVec
	CodesIssuedTotal        prometheus.Counter
	CodeExchangesTotal      *prometheus.CounterVec
	TokenVerificationsTotal *prometheus.CounterVec
	UpstreamAuthDuration    prometheus.Histogram
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns a Prometheus-backed Recorder when enabled, otherwise a no-op.
// sync.Once guards against double registration.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = &Metrics{
			ClientsRegisteredTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "oauth_clients_registered_total",
				Help: "Total number of dynamically registered OAuth clients",
			}),
			LoginAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "oauth_login_attempts_total",
				Help: "Login attempts by outcome (success, denied, unavailable, error)",
			}, []string{"outcome"}),
			CodesIssuedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "oauth_authorization_codes_issued_total",
				Help: "Total number of authorization codes issued",
			}),
			CodeExchangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "oauth_code_exchanges_total",
				Help: "Code-for-token exchanges by outcome (success, invalid_grant, error)",
			}, []string{"outcome"}),
			TokenVerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "oauth_token_verifications_total",
				Help: "Bearer token verifications by outcome (success, failure)",
			}, []string{"outcome"}),
			UpstreamAuthDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "upstream_auth_duration_seconds",
				Help:    "Duration of calls to the BV-BRC authentication service",
				Buckets: prometheus.DefBuckets,
			}),
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by method, path and status",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by method and path",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),
		}
	})

	return defaultMetrics
}

func (m *Metrics) RecordClientRegistered() {
	m.ClientsRegisteredTotal.Inc()
}

func (m *Metrics) RecordLoginAttempt(outcome string) {
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCodeIssued() {
	m.CodesIssuedTotal.Inc()
}

func (m *Metrics) RecordCodeExchange(outcome string) {
	m.CodeExchangesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTokenVerification(outcome string) {
	m.TokenVerificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordUpstreamAuthDuration(seconds float64) {
	m.UpstreamAuthDuration.Observe(seconds)
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

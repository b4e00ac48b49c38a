package upstream

import (
	"context"
	"time"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
)

// InstrumentedAuthenticator wraps an Authenticator and records the
// duration of every upstream call, success or failure.
type InstrumentedAuthenticator struct {
	next    Authenticator
	metrics metrics.Recorder
}

func NewInstrumentedAuthenticator(next Authenticator, recorder metrics.Recorder) *InstrumentedAuthenticator {
	return &InstrumentedAuthenticator{next: next, metrics: recorder}
}

func (a *InstrumentedAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	start := time.Now()
	token, err := a.next.Authenticate(ctx, username, password)
	a.metrics.RecordUpstreamAuthDuration(time.Since(start).Seconds())
	return token, err
}

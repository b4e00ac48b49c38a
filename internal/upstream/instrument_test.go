package upstream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
)

type captureRecorder struct {
	*metrics.NoopMetrics
	durations []float64
}

func (r *captureRecorder) RecordUpstreamAuthDuration(seconds float64) {
	r.durations = append(r.durations, seconds)
}

type stubAuthenticator struct {
	token string
	err   error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	return s.token, s.err
}

func TestInstrumentedAuthenticator_RecordsOnSuccess(t *testing.T) {
	recorder := &captureRecorder{NoopMetrics: metrics.NewNoopMetrics()}
	auth := NewInstrumentedAuthenticator(&stubAuthenticator{token: "tok"}, recorder)

	token, err := auth.Authenticate(context.Background(), "user", "pass")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.Len(t, recorder.durations, 1)
	assert.GreaterOrEqual(t, recorder.durations[0], 0.0)
}

func TestInstrumentedAuthenticator_RecordsOnFailure(t *testing.T) {
	recorder := &captureRecorder{NoopMetrics: metrics.NewNoopMetrics()}
	auth := NewInstrumentedAuthenticator(&stubAuthenticator{err: ErrAuthFailed}, recorder)

	_, err := auth.Authenticate(context.Background(), "user", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthFailed))
	assert.Len(t, recorder.durations, 1)
}

package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonanl/bvbrc-mcp-server/internal/bvbrc"
	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
)

const testToken = "un=tester@patricbrc.org|tokenid=ABC123|expiry=9999999999|sig=deadbeef"

func newTestVerifier() *services.TokenVerifier {
	return services.NewTokenVerifier(store.NewMemoryStore(), &config.Config{
		RequiredScopes: []string{"profile", "token"},
		AccessTokenTTL: time.Hour,
	})
}

func TestHTTPContextFunc(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"bearer prefix stripped", "Bearer " + testToken, testToken},
		{"lowercase bearer", "bearer " + testToken, testToken},
		{"bare token", testToken, testToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			ctx := HTTPContextFunc(context.Background(), req)
			assert.Equal(t, tt.want, TokenFromContext(ctx))
		})
	}
}

func TestSessionToken(t *testing.T) {
	s := &Server{verifier: newTestVerifier()}
	ctxWithToken := context.WithValue(context.Background(), tokenContextKey, testToken)

	t.Run("transport token wins", func(t *testing.T) {
		got, err := s.sessionToken(ctxWithToken, map[string]any{"token": "arg-token"})
		require.NoError(t, err)
		assert.Equal(t, testToken, got)
	})

	t.Run("argument token is verified and accepted", func(t *testing.T) {
		got, err := s.sessionToken(context.Background(), map[string]any{"token": " " + testToken + " "})
		require.NoError(t, err)
		assert.Equal(t, testToken, got)
	})

	t.Run("invalid argument token is rejected", func(t *testing.T) {
		_, err := s.sessionToken(context.Background(), map[string]any{"token": "not-a-real-token"})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("expired argument token is rejected", func(t *testing.T) {
		expired := "un=tester@patricbrc.org|tokenid=ABC123|expiry=1000000000|sig=deadbeef"
		_, err := s.sessionToken(context.Background(), map[string]any{"token": expired})
		require.Error(t, err)
	})

	t.Run("no token anywhere", func(t *testing.T) {
		_, err := s.sessionToken(context.Background(), map[string]any{})
		assert.ErrorIs(t, err, errAuthRequired)
	})

	t.Run("non-string argument", func(t *testing.T) {
		_, err := s.sessionToken(context.Background(), map[string]any{"token": 42})
		assert.ErrorIs(t, err, errAuthRequired)
	})
}

// A tool call carrying the session token only as an argument, with no
// Authorization header on the transport, must still reach the backend
// with that token attached.
func TestQueryCollection_TokenArgumentOnly(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response": {"numFound": 1, "docs": [{"genome_id": "83332.12"}]}}`))
	}))
	defer backend.Close()

	s := New("test", "dev",
		newTestVerifier(),
		bvbrc.NewDataClient(backend.URL, 5*time.Second),
		nil, nil)

	req := mcp.CallToolRequest{}
	req.Params.Name = "query_collection"
	req.Params.Arguments = map[string]any{
		"collection": "genome",
		"token":      testToken,
	}

	result, err := s.handleQueryCollection(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.Equal(t, testToken, gotAuth)
}

func TestQueryCollection_NoToken(t *testing.T) {
	s := New("test", "dev",
		newTestVerifier(),
		bvbrc.NewDataClient("http://127.0.0.1:1", time.Second),
		nil, nil)

	req := mcp.CallToolRequest{}
	req.Params.Name = "query_collection"
	req.Params.Arguments = map[string]any{"collection": "genome"}

	result, err := s.handleQueryCollection(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestQueryCollection_BadArgumentToken(t *testing.T) {
	s := New("test", "dev",
		newTestVerifier(),
		bvbrc.NewDataClient("http://127.0.0.1:1", time.Second),
		nil, nil)

	req := mcp.CallToolRequest{}
	req.Params.Name = "query_collection"
	req.Params.Arguments = map[string]any{
		"collection": "genome",
		"token":      "garbage",
	}

	result, err := s.handleQueryCollection(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
)

const testPatricToken = "un=tester@patricbrc.org|tokenid=ABC123|expiry=9999999999|sig=deadbeef"

const testResourceMetadataURL = "http://localhost:12010/mcp/.well-known/oauth-protected-resource"

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"bearer prefix", "Bearer abc123", "abc123"},
		{"lowercase bearer", "bearer abc123", "abc123"},
		{"bare token", "abc123", "abc123"},
		{"bare patric token", testPatricToken, testPatricToken},
		{"surrounding whitespace", "  Bearer abc123  ", "abc123"},
		{"only whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBearerToken(tt.header))
		})
	}
}

func setupProtectedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		RequiredScopes: []string{"profile", "token"},
		AccessTokenTTL: time.Hour,
	}
	verifier := services.NewTokenVerifier(store.NewMemoryStore(), cfg)

	r := gin.New()
	r.GET("/mcp",
		RequireBearerToken(verifier, metrics.NewNoopMetrics(), testResourceMetadataURL),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"username": c.GetString(ContextUsername),
				"token":    c.GetString(ContextBearerToken),
			})
		},
	)
	return r
}

// Requests without an Authorization header defer to the tool layer,
// which accepts a verified token argument instead.
func TestRequireBearerToken_NoHeaderPassesThrough(t *testing.T) {
	r := setupProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp["username"])
	assert.Empty(t, resp["token"])
}

func TestRequireBearerToken_GarbageToken(t *testing.T) {
	r := setupProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t,
		`Bearer error="invalid_token", resource_metadata="`+testResourceMetadataURL+`"`,
		w.Header().Get("WWW-Authenticate"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_token", resp["error"])
}

func TestRequireBearerToken_ValidToken(t *testing.T) {
	r := setupProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+testPatricToken)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tester@patricbrc.org", resp["username"])
	assert.Equal(t, testPatricToken, resp["token"])
}

func TestRequireBearerToken_BareTokenHeader(t *testing.T) {
	r := setupProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Authorization", testPatricToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

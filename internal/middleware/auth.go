package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
)

// Context keys set by RequireBearerToken for downstream handlers.
const (
	ContextUsername    = "username"
	ContextBearerToken = "bearer_token"
)

// RequireBearerToken verifies the Authorization header in front of the
// tool endpoint. A failed verification is an authentication failure on
// this call only; the response advertises the protected resource
// metadata per RFC 9728 §5.1. Requests without an Authorization header
// pass through: the tool layer accepts and verifies an explicit token
// argument for clients that cannot set headers, and rejects tool calls
// that carry no token at all.
func RequireBearerToken(
	verifier *services.TokenVerifier,
	recorder metrics.Recorder,
	resourceMetadataURL string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		assertion, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			recorder.RecordTokenVerification("failure")
			c.Header(
				"WWW-Authenticate",
				`Bearer error="invalid_token", resource_metadata="`+resourceMetadataURL+`"`,
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_token",
				"error_description": "Bearer token is missing, invalid, or expired",
			})
			c.Abort()
			return
		}

		recorder.RecordTokenVerification("success")
		c.Set(ContextUsername, assertion.Username)
		c.Set(ContextBearerToken, assertion.Token)
		c.Next()
	}
}

// ExtractBearerToken parses an Authorization header value. Both
// "Bearer <token>" and a bare token are accepted, matching what BV-BRC
// clients send in practice.
func ExtractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

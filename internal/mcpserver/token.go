package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const tokenContextKey contextKey = "bvbrc_token"

var errAuthRequired = errors.New(
	"authentication required: supply a bearer token in the Authorization header or a token argument")

// HTTPContextFunc lifts the caller's session token from the incoming
// HTTP request into the tool-call context. Both "Bearer <token>" and a
// bare token are accepted.
func HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ctx
	}
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	return context.WithValue(ctx, tokenContextKey, header)
}

// TokenFromContext returns the session token in ctx, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// sessionToken picks the token for a tool call. A transport-level token
// was already verified by the gateway middleware and wins; an explicit
// token argument is the fallback for clients that cannot set headers
// and is verified here before use.
func (s *Server) sessionToken(ctx context.Context, args map[string]any) (string, error) {
	if token := TokenFromContext(ctx); token != "" {
		return token, nil
	}

	token, _ := args["token"].(string)
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errAuthRequired
	}
	if _, err := s.verifier.Verify(ctx, token); err != nil {
		return "", fmt.Errorf("token argument rejected: %w", err)
	}
	return token, nil
}

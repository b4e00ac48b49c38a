package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
)

// ErrInvalidToken is returned for any bearer token that fails verification.
// Verification failure is surfaced as an authentication failure on the
// specific call, never as a process-level error.
var ErrInvalidToken = errors.New("invalid or expired token")

// PublicClientID is the fixed client identifier attached to every verified
// access token assertion.
const PublicClientID = "bvbrc-public-client"

// minTokenLength rejects strings too short to be any real credential.
const minTokenLength = 10

// TokenVerifier decides whether a presented bearer token is valid and
// extracts the identity behind it. Tokens issued through the OAuth flow are
// found in the token store; anything else is accepted only if it parses as a
// PATRIC-native token that has not expired.
type TokenVerifier struct {
	tokens store.TokenStore
	config *config.Config
}

func NewTokenVerifier(tokens store.TokenStore, cfg *config.Config) *TokenVerifier {
	return &TokenVerifier{tokens: tokens, config: cfg}
}

// Verify checks the token and returns an access token assertion carrying the
// resolved username, the fixed public client id, and the configured scopes.
// The assertion's expiry is bookkeeping only; the upstream system remains
// authoritative for the credential itself.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (*models.AccessToken, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var username string
	record, err := v.tokens.GetToken(ctx, token)
	switch {
	case err == nil:
		username = record.Username
	case errors.Is(err, store.ErrNotFound):
		// Not one of ours; accept PATRIC-native tokens on structure alone.
		username, err = parsePatricToken(token)
		if err != nil {
			return nil, ErrInvalidToken
		}
	default:
		log.Printf("token verification: store lookup failed: %v", err)
		return nil, ErrInvalidToken
	}

	if len(strings.TrimSpace(token)) < minTokenLength {
		return nil, ErrInvalidToken
	}

	return &models.AccessToken{
		Token:     token,
		ClientID:  PublicClientID,
		Username:  username,
		Scopes:    v.config.RequiredScopes,
		ExpiresAt: time.Now().Add(v.config.AccessTokenTTL),
	}, nil
}

// parsePatricToken validates the pipe-delimited PATRIC token format:
// un=<username>|tokenid=...|expiry=<epoch-seconds>|... The username segment
// is mandatory; an expiry in the past fails verification.
func parsePatricToken(token string) (string, error) {
	if !strings.Contains(token, "un=") || !strings.Contains(token, "|tokenid=") {
		return "", ErrInvalidToken
	}

	var username string
	var expiry int64
	for _, part := range strings.Split(token, "|") {
		switch {
		case strings.HasPrefix(part, "un="):
			username = strings.TrimPrefix(part, "un=")
		case strings.HasPrefix(part, "expiry="):
			value, err := strconv.ParseInt(strings.TrimPrefix(part, "expiry="), 10, 64)
			if err != nil {
				return "", ErrInvalidToken
			}
			expiry = value
		}
	}

	if username == "" {
		return "", ErrInvalidToken
	}
	if expiry != 0 && expiry < time.Now().Unix() {
		return "", ErrInvalidToken
	}

	return username, nil
}

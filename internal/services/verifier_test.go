package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
)

func newTestVerifier(t *testing.T) (*TokenVerifier, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewTokenVerifier(s, testConfig()), s
}

func TestVerify_IssuedToken(t *testing.T) {
	v, s := newTestVerifier(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, &models.IssuedToken{
		Token:    testUpstreamToken,
		Username: "tester@patricbrc.org",
		IssuedAt: time.Now(),
	}))

	assertion, err := v.Verify(ctx, testUpstreamToken)
	require.NoError(t, err)
	assert.Equal(t, testUpstreamToken, assertion.Token)
	assert.Equal(t, "tester@patricbrc.org", assertion.Username)
	assert.Equal(t, PublicClientID, assertion.ClientID)
	assert.Equal(t, []string{"profile", "token"}, assertion.Scopes)
	assert.True(t, assertion.ExpiresAt.After(time.Now()))
}

func TestVerify_PatricNativeToken(t *testing.T) {
	v, _ := newTestVerifier(t)
	ctx := context.Background()

	// A structurally valid PATRIC token never seen by the OAuth flow
	future := time.Now().Add(24 * time.Hour).Unix()
	token := fmt.Sprintf("un=walkin@patricbrc.org|tokenid=XYZ789|expiry=%d|sig=cafe", future)

	assertion, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "walkin@patricbrc.org", assertion.Username)
}

func TestVerify_ExpiredPatricToken(t *testing.T) {
	v, _ := newTestVerifier(t)

	past := time.Now().Add(-time.Hour).Unix()
	token := fmt.Sprintf("un=walkin@patricbrc.org|tokenid=XYZ789|expiry=%d", past)

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_PatricTokenWithoutExpiry(t *testing.T) {
	v, _ := newTestVerifier(t)

	// Missing expiry segment: accepted on structure alone
	assertion, err := v.Verify(context.Background(), "un=walkin@patricbrc.org|tokenid=XYZ789")
	require.NoError(t, err)
	assert.Equal(t, "walkin@patricbrc.org", assertion.Username)
}

func TestVerify_Rejections(t *testing.T) {
	v, _ := newTestVerifier(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-real-token-at-all"},
		{"jwt-shaped", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.c2ln"},
		{"missing tokenid", "un=walkin@patricbrc.org|expiry=9999999999"},
		{"missing username", "tokenid=XYZ789|un=|expiry=9999999999"},
		{"malformed expiry", "un=walkin@patricbrc.org|tokenid=XYZ|expiry=notanumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_ShortIssuedToken(t *testing.T) {
	v, s := newTestVerifier(t)
	ctx := context.Background()

	// Even a token the store knows is rejected when implausibly short
	require.NoError(t, s.SaveToken(ctx, &models.IssuedToken{
		Token:    "tiny",
		Username: "tester@patricbrc.org",
		IssuedAt: time.Now(),
	}))

	_, err := v.Verify(ctx, "tiny")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

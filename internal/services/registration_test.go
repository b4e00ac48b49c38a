package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
)

func TestRegister_Defaults(t *testing.T) {
	rs := NewRegistrationService(store.NewMemoryStore())

	client, err := rs.Register(context.Background(), &ClientMetadata{
		RedirectURIs: []string{"https://claude.ai/api/mcp/auth_callback"},
		ClientName:   "Claude",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, client.ClientID)
	assert.NotZero(t, client.ClientIDIssuedAt)
	assert.Equal(t, "none", client.TokenEndpointAuthMethod)
	assert.Equal(t, []string{"authorization_code", "refresh_token"}, client.GrantTypes)
	assert.Equal(t, []string{"code"}, client.ResponseTypes)
	assert.Equal(t, "Claude", client.ClientName)

	// Public clients get no secret
	assert.Empty(t, client.ClientSecret)
	assert.Nil(t, client.ClientSecretExpiresAt)
}

func TestRegister_ConfidentialClientGetsSecret(t *testing.T) {
	rs := NewRegistrationService(store.NewMemoryStore())

	client, err := rs.Register(context.Background(), &ClientMetadata{
		RedirectURIs:            []string{"http://localhost:3000/cb"},
		TokenEndpointAuthMethod: "client_secret_post",
	})
	require.NoError(t, err)

	assert.Len(t, client.ClientSecret, 64) // 32 random bytes, hex encoded
	require.NotNil(t, client.ClientSecretExpiresAt)
	assert.Equal(t, int64(0), *client.ClientSecretExpiresAt) // never expires
}

func TestRegister_MissingRedirectURIs(t *testing.T) {
	rs := NewRegistrationService(store.NewMemoryStore())

	_, err := rs.Register(context.Background(), &ClientMetadata{})
	assert.ErrorIs(t, err, ErrInvalidClientMetadata)

	_, err = rs.Register(context.Background(), &ClientMetadata{RedirectURIs: []string{}})
	assert.ErrorIs(t, err, ErrInvalidClientMetadata)
}

func TestRegister_MetadataCopiedThrough(t *testing.T) {
	rs := NewRegistrationService(store.NewMemoryStore())

	client, err := rs.Register(context.Background(), &ClientMetadata{
		RedirectURIs: []string{"http://localhost:3000/cb"},
		Scope:        "profile token",
		ClientURI:    "https://example.com",
		Contacts:     []string{"ops@example.com"},
		SoftwareID:   "llm-connector",
	})
	require.NoError(t, err)

	assert.Equal(t, "profile token", client.Scope)
	assert.Equal(t, "https://example.com", client.ClientURI)
	assert.Equal(t, []string{"ops@example.com"}, client.Contacts)
	assert.Equal(t, "llm-connector", client.SoftwareID)
}

func TestLookup(t *testing.T) {
	s := store.NewMemoryStore()
	rs := NewRegistrationService(s)
	ctx := context.Background()

	client, err := rs.Register(ctx, &ClientMetadata{
		RedirectURIs: []string{"http://localhost:3000/cb"},
	})
	require.NoError(t, err)

	got, err := rs.Lookup(ctx, client.ClientID)
	require.NoError(t, err)
	assert.Equal(t, client.ClientID, got.ClientID)

	_, err = rs.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegister_UniqueClientIDs(t *testing.T) {
	rs := NewRegistrationService(store.NewMemoryStore())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		client, err := rs.Register(ctx, &ClientMetadata{
			RedirectURIs: []string{"http://localhost:3000/cb"},
		})
		require.NoError(t, err)
		assert.False(t, seen[client.ClientID])
		seen[client.ClientID] = true
	}
}

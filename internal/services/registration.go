package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
	"github.com/olsonanl/bvbrc-mcp-server/internal/util"
)

// ErrInvalidClientMetadata is returned when a registration request is missing
// required fields (RFC 7591 invalid_client_metadata).
var ErrInvalidClientMetadata = errors.New("redirect_uris is required and must not be empty")

// ClientMetadata is the RFC 7591 registration request body subset the broker
// accepts. Unknown fields are ignored.
type ClientMetadata struct {
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	ClientName              string   `json:"client_name"`
	Scope                   string   `json:"scope"`
	ClientURI               string   `json:"client_uri"`
	LogoURI                 string   `json:"logo_uri"`
	Contacts                []string `json:"contacts"`
	TosURI                  string   `json:"tos_uri"`
	PolicyURI               string   `json:"policy_uri"`
	JwksURI                 string   `json:"jwks_uri"`
	SoftwareID              string   `json:"software_id"`
	SoftwareVersion         string   `json:"software_version"`
}

// RegistrationService implements OAuth 2.0 Dynamic Client Registration
// (RFC 7591). Clients are immutable after creation.
type RegistrationService struct {
	clients store.ClientStore
}

func NewRegistrationService(clients store.ClientStore) *RegistrationService {
	return &RegistrationService{clients: clients}
}

// Register validates the metadata, mints a fresh client_id (and a secret
// unless the auth method is "none"), and stores the client.
func (s *RegistrationService) Register(
	ctx context.Context,
	meta *ClientMetadata,
) (*models.RegisteredClient, error) {
	if len(meta.RedirectURIs) == 0 {
		return nil, ErrInvalidClientMetadata
	}

	authMethod := meta.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = "none"
	}

	grantTypes := meta.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code", "refresh_token"}
	}
	responseTypes := meta.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = []string{"code"}
	}

	client := &models.RegisteredClient{
		ClientID:                uuid.New().String(),
		ClientIDIssuedAt:        time.Now().Unix(),
		RedirectURIs:            meta.RedirectURIs,
		TokenEndpointAuthMethod: authMethod,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		ClientName:              meta.ClientName,
		Scope:                   meta.Scope,
		ClientURI:               meta.ClientURI,
		LogoURI:                 meta.LogoURI,
		Contacts:                meta.Contacts,
		TosURI:                  meta.TosURI,
		PolicyURI:               meta.PolicyURI,
		JwksURI:                 meta.JwksURI,
		SoftwareID:              meta.SoftwareID,
		SoftwareVersion:         meta.SoftwareVersion,
	}

	// Secrets are not needed for public ("none") clients.
	if authMethod != "none" {
		secret, err := util.RandomHexString(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate client secret: %w", err)
		}
		var never int64 // 0 means the secret never expires
		client.ClientSecret = secret
		client.ClientSecretExpiresAt = &never
	}

	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	return client, nil
}

// Lookup returns the registered client, or store.ErrNotFound.
func (s *RegistrationService) Lookup(
	ctx context.Context,
	clientID string,
) (*models.RegisteredClient, error) {
	return s.clients.GetClient(ctx, clientID)
}

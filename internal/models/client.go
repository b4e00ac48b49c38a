package models

// RegisteredClient holds a dynamically registered OAuth 2.0 client
// (RFC 7591). Clients are immutable after registration; there is no
// update or delete endpoint.
type RegisteredClient struct {
	ClientID              string   `json:"client_id"`
	ClientIDIssuedAt      int64    `json:"client_id_issued_at"`
	ClientSecret          string   `json:"client_secret,omitempty"`
	ClientSecretExpiresAt *int64   `json:"client_secret_expires_at,omitempty"` // 0 means never expires
	RedirectURIs          []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string `json:"token_endpoint_auth_method"`
	GrantTypes            []string `json:"grant_types"`
	ResponseTypes         []string `json:"response_types"`

	// Optional descriptive metadata copied through from the registration
	// request (RFC 7591 §2).
	ClientName      string   `json:"client_name,omitempty"`
	Scope           string   `json:"scope,omitempty"`
	ClientURI       string   `json:"client_uri,omitempty"`
	LogoURI         string   `json:"logo_uri,omitempty"`
	Contacts        []string `json:"contacts,omitempty"`
	TosURI          string   `json:"tos_uri,omitempty"`
	PolicyURI       string   `json:"policy_uri,omitempty"`
	JwksURI         string   `json:"jwks_uri,omitempty"`
	SoftwareID      string   `json:"software_id,omitempty"`
	SoftwareVersion string   `json:"software_version,omitempty"`
}

// HasRedirectURI reports whether uri exactly matches one of the client's
// registered redirect URIs.
func (c *RegisteredClient) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// DisplayName returns the client_name when present, falling back to the
// client_id for the login page.
func (c *RegisteredClient) DisplayName() string {
	if c.ClientName != "" {
		return c.ClientName
	}
	return c.ClientID
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
)

// OIDCHandler serves the OIDC discovery document and the RFC 9728 protected
// resource metadata that point LLM clients at the authorization endpoints.
// Both are pure functions of configuration.
type OIDCHandler struct {
	config *config.Config
}

func NewOIDCHandler(cfg *config.Config) *OIDCHandler {
	return &OIDCHandler{config: cfg}
}

// discoveryMetadata holds the provider metadata returned by the discovery
// endpoint (OIDC Discovery 1.0 / RFC 8414).
type discoveryMetadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
	TokenEndpointAuthMethods      []string `json:"token_endpoint_auth_methods_supported"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
	ScopesSupported               []string `json:"scopes_supported"`
	ClaimsSupported               []string `json:"claims_supported"`
}

// Discovery serves GET /.well-known/openid-configuration.
func (h *OIDCHandler) Discovery(c *gin.Context) {
	base := strings.TrimRight(h.config.BaseURL, "/")
	meta := discoveryMetadata{
		Issuer:                        h.config.IssuerURL,
		AuthorizationEndpoint:         base + "/oauth2/authorize",
		TokenEndpoint:                 base + "/oauth2/token",
		RegistrationEndpoint:          base + "/oauth2/register",
		ResponseTypesSupported:        []string{"code"},
		GrantTypesSupported:           []string{"authorization_code"},
		TokenEndpointAuthMethods:      []string{"none", "client_secret_post"},
		CodeChallengeMethodsSupported: []string{"S256"},
		ScopesSupported:               []string{"profile", "token"},
		ClaimsSupported:               []string{"sub", "api_token"},
	}
	c.JSON(http.StatusOK, meta)
}

// protectedResourceMetadata is the RFC 9728 document shape.
type protectedResourceMetadata struct {
	Resource             string   `json:"resource"`
	AuthorizationServers []string `json:"authorization_servers"`
	ScopesSupported      []string `json:"scopes_supported"`
	ResourceName         string   `json:"resource_name"`
}

// ProtectedResourceMCP serves GET /mcp/.well-known/oauth-protected-resource,
// scoped to the MCP endpoint path.
func (h *OIDCHandler) ProtectedResourceMCP(c *gin.Context) {
	base := strings.TrimRight(h.config.BaseURL, "/")
	c.JSON(http.StatusOK, protectedResourceMetadata{
		Resource:             base + "/mcp",
		AuthorizationServers: []string{base},
		ScopesSupported:      h.config.RequiredScopes,
		ResourceName:         "BV-BRC MCP",
	})
}

// ProtectedResourceRoot serves GET /.well-known/oauth-protected-resource for
// the whole server.
func (h *OIDCHandler) ProtectedResourceRoot(c *gin.Context) {
	base := strings.TrimRight(h.config.BaseURL, "/")
	c.JSON(http.StatusOK, protectedResourceMetadata{
		Resource:             base,
		AuthorizationServers: []string{base},
		ScopesSupported:      h.config.RequiredScopes,
		ResourceName:         "BV-BRC MCP Server",
	})
}

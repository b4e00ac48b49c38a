package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
	"github.com/olsonanl/bvbrc-mcp-server/internal/upstream"
	"github.com/olsonanl/bvbrc-mcp-server/internal/util"
)

// Authorization Code Flow errors. Handlers map these to RFC 6749 error codes
// with errors.Is.
var (
	ErrMissingClientID         = errors.New("client_id is required")
	ErrMissingRedirectURI      = errors.New("redirect_uri is required")
	ErrUnsupportedResponseType = errors.New("only 'code' response type is supported")
	ErrClientNotFound          = errors.New("client not found")
	ErrRedirectURINotAllowed   = errors.New("redirect_uri is not whitelisted")
	ErrRedirectURIMismatch     = errors.New("redirect_uri does not match registered URIs")
	ErrMissingCredentials      = errors.New("username and password are required")

	ErrMissingCode          = errors.New("code is required")
	ErrMissingGrantType     = errors.New("grant_type is required")
	ErrUnsupportedGrantType = errors.New("only 'authorization_code' grant type is supported")
	ErrCodeNotFound         = errors.New("authorization code not found or invalid")
	ErrCodeAlreadyUsed      = errors.New("authorization code already used")
	ErrCodeExpired          = errors.New("authorization code expired")
	ErrClientIDMismatch     = errors.New("client ID mismatch")
	ErrBoundURIMismatch     = errors.New("redirect URI mismatch")
	ErrVerifierRequired     = errors.New("code_verifier is required for PKCE")
	ErrVerifierInvalid      = errors.New("code verifier validation failed")
)

// authorizationCodeBytes gives 256 bits of entropy per code.
const authorizationCodeBytes = 32

// AuthorizeRequest holds the validated parameters of an authorization
// request. No server-side state is created at authorize time: the parameters
// are round-tripped through the login form.
type AuthorizeRequest struct {
	Client              *models.RegisteredClient
	RedirectURI         string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	Scope               string
}

// TokenGrant is the outcome of a successful code exchange.
type TokenGrant struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	Scope       string
	Username    string
}

// AuthorizationService implements the OAuth 2.0 Authorization Code Flow
// (RFC 6749) with PKCE (RFC 7636), brokering BV-BRC session tokens.
type AuthorizationService struct {
	store         store.Store
	authenticator upstream.Authenticator
	config        *config.Config
}

func NewAuthorizationService(
	s store.Store,
	authenticator upstream.Authenticator,
	cfg *config.Config,
) *AuthorizationService {
	return &AuthorizationService{
		store:         s,
		authenticator: authenticator,
		config:        cfg,
	}
}

// ValidateAuthorizeRequest checks an incoming authorization request. The
// validation order is load-bearing for interoperability: parameter presence,
// response type, client existence, allow-list, registered URIs.
func (s *AuthorizationService) ValidateAuthorizeRequest(
	ctx context.Context,
	clientID, redirectURI, responseType, state, codeChallenge, codeChallengeMethod, scope string,
) (*AuthorizeRequest, error) {
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	if redirectURI == "" {
		return nil, ErrMissingRedirectURI
	}
	if responseType != "code" {
		return nil, ErrUnsupportedResponseType
	}

	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	if !s.isAllowedCallback(redirectURI) {
		return nil, fmt.Errorf(
			"%w: '%s' (allowed: %s or any localhost URL)",
			ErrRedirectURINotAllowed, redirectURI, strings.Join(s.config.AllowedCallbackURLs, ", "),
		)
	}

	if !client.HasRedirectURI(redirectURI) {
		return nil, ErrRedirectURIMismatch
	}

	return &AuthorizeRequest{
		Client:              client,
		RedirectURI:         redirectURI,
		State:               state,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		Scope:               scope,
	}, nil
}

// Login authenticates the user against the upstream BV-BRC service and, on
// success, mints a single-use authorization code bound to the carried-through
// authorize parameters. No partial state is created on failure.
func (s *AuthorizationService) Login(
	ctx context.Context,
	username, password string,
	req *AuthorizeRequest,
) (code string, err error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	upstreamToken, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return "", err // upstream.ErrAuthFailed or upstream.ErrUnavailable
	}

	code, err = util.RandomURLSafeString(authorizationCodeBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}

	record := &models.AuthorizationCode{
		Code:                code,
		ClientID:            req.Client.ClientID,
		RedirectURI:         req.RedirectURI,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		Scope:               req.Scope,
		UpstreamToken:       upstreamToken,
		Username:            username,
		ExpiresAt:           time.Now().Add(s.config.AuthCodeExpiration),
	}
	if err := s.store.CreateCode(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save authorization code: %w", err)
	}

	return code, nil
}

// RedirectURL builds the callback URL carrying the code and, when present,
// the client's state.
func RedirectURL(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect_uri: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode validates a code-for-token request and redeems the code. The
// validation order matches the protocol exactly; the mark-used step is an
// atomic check-and-set so a code can be redeemed at most once even under
// concurrent duplicate requests. On success the upstream session token is
// recorded and returned as the bearer credential.
func (s *AuthorizationService) ExchangeCode(
	ctx context.Context,
	code, clientID, redirectURI, grantType, codeVerifier string,
) (*TokenGrant, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	if redirectURI == "" {
		return nil, ErrMissingRedirectURI
	}
	if grantType == "" {
		return nil, ErrMissingGrantType
	}
	if grantType != "authorization_code" {
		return nil, ErrUnsupportedGrantType
	}

	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}
	if !client.HasRedirectURI(redirectURI) {
		return nil, ErrRedirectURIMismatch
	}

	record, err := s.store.GetCode(ctx, code)
	if err != nil {
		return nil, ErrCodeNotFound
	}
	if record.Used {
		return nil, ErrCodeAlreadyUsed
	}
	if record.IsExpired() {
		return nil, ErrCodeExpired
	}
	if record.ClientID != clientID {
		return nil, ErrClientIDMismatch
	}
	if record.RedirectURI != redirectURI {
		return nil, ErrBoundURIMismatch
	}

	// PKCE (RFC 7636, S256 only): required iff a challenge was bound.
	if record.CodeChallenge != "" {
		if codeVerifier == "" {
			return nil, ErrVerifierRequired
		}
		if util.S256Challenge(codeVerifier) != record.CodeChallenge {
			return nil, ErrVerifierInvalid
		}
	}

	// Redeem. Under concurrent duplicate exchanges the store guarantees
	// exactly one winner; losers surface as invalid_grant.
	if err := s.store.MarkCodeUsed(ctx, code); err != nil {
		if errors.Is(err, store.ErrCodeAlreadyUsed) {
			return nil, ErrCodeAlreadyUsed
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to mark code as used: %w", err)
	}

	if err := s.store.SaveToken(ctx, &models.IssuedToken{
		Token:    record.UpstreamToken,
		Username: record.Username,
		IssuedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record issued token: %w", err)
	}

	return &TokenGrant{
		AccessToken: record.UpstreamToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.AccessTokenTTL.Seconds()),
		Scope:       record.Scope,
		Username:    record.Username,
	}, nil
}

// isAllowedCallback checks the fixed allow-list plus the blanket loopback
// rule: any localhost/127.x/::1 URL on any port is accepted.
func (s *AuthorizationService) isAllowedCallback(redirectURI string) bool {
	for _, allowed := range s.config.AllowedCallbackURLs {
		if redirectURI == allowed {
			return true
		}
	}
	return IsLocalhostURL(redirectURI)
}

// IsLocalhostURL reports whether a URL targets the local host on any port.
func IsLocalhostURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	hostname := strings.ToLower(u.Hostname())
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasPrefix(hostname, "127.")
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
	"github.com/olsonanl/bvbrc-mcp-server/internal/templates"
	"github.com/olsonanl/bvbrc-mcp-server/internal/upstream"
)

// AuthorizationHandler serves the authorize and login endpoints of the
// Authorization Code Flow. The authorize step renders the login page with the
// request parameters as hidden fields; no server-side state exists until a
// successful login mints a code.
type AuthorizationHandler struct {
	authorizationService *services.AuthorizationService
	metrics              metrics.Recorder
}

func NewAuthorizationHandler(
	as *services.AuthorizationService,
	recorder metrics.Recorder,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationService: as,
		metrics:              recorder,
	}
}

// Authorize handles GET /oauth2/authorize. Validation failures are returned
// as JSON error bodies with HTTP 400 rather than error redirects, matching
// the behavior standard MCP clients expect from this gateway.
func (h *AuthorizationHandler) Authorize(c *gin.Context) {
	req, err := h.authorizationService.ValidateAuthorizeRequest(
		c.Request.Context(),
		c.Query("client_id"),
		c.Query("redirect_uri"),
		c.Query("response_type"),
		c.Query("state"),
		c.Query("code_challenge"),
		c.Query("code_challenge_method"),
		c.Query("scope"),
	)
	if err != nil {
		respondOAuthError(c, err)
		return
	}

	log.Printf("authorizing client: %s", req.Client.DisplayName())

	c.HTML(http.StatusOK, "login.html", templates.LoginPageProps{
		ClientName:          req.Client.DisplayName(),
		Scope:               req.Scope,
		LoginAction:         "/oauth2/login",
		ClientID:            req.Client.ClientID,
		RedirectURI:         req.RedirectURI,
		State:               req.State,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
	})
}

// Login handles POST /oauth2/login: the form submission carrying the user's
// credentials plus the round-tripped authorize parameters. On success the
// user agent is redirected to the client callback with the fresh code.
func (h *AuthorizationHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	state := c.PostForm("state")

	if username == "" || password == "" {
		respondOAuthError(c, services.ErrMissingCredentials)
		return
	}

	req := &services.AuthorizeRequest{
		RedirectURI:         c.PostForm("redirect_uri"),
		State:               state,
		CodeChallenge:       c.PostForm("code_challenge"),
		CodeChallengeMethod: c.PostForm("code_challenge_method"),
		Scope:               c.PostForm("scope"),
	}
	// The login form carries client_id as an opaque hidden field; bind it
	// back onto the request for code issuance.
	client, err := h.authorizationService.ValidateAuthorizeRequest(
		c.Request.Context(),
		c.PostForm("client_id"),
		req.RedirectURI,
		"code",
		state,
		req.CodeChallenge,
		req.CodeChallengeMethod,
		req.Scope,
	)
	if err != nil {
		respondOAuthError(c, err)
		return
	}
	req.Client = client.Client

	code, err := h.authorizationService.Login(c.Request.Context(), username, password, req)
	if err != nil {
		h.recordLoginFailure(err)
		log.Printf("login failed for user %s: %v", username, err)
		respondOAuthError(c, err)
		return
	}

	h.metrics.RecordLoginAttempt("success")
	h.metrics.RecordCodeIssued()
	log.Printf("generated authorization code for user %s", username)

	location, err := services.RedirectURL(req.RedirectURI, code, state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             errServerError,
			"error_description": err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, location)
}

func (h *AuthorizationHandler) recordLoginFailure(err error) {
	switch {
	case errors.Is(err, upstream.ErrAuthFailed):
		h.metrics.RecordLoginAttempt("denied")
	case errors.Is(err, upstream.ErrUnavailable):
		h.metrics.RecordLoginAttempt("unavailable")
	default:
		h.metrics.RecordLoginAttempt("error")
	}
}

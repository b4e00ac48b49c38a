package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
)

// TokenHandler serves the token endpoint: authorization-code-for-token
// exchange (RFC 6749 §4.1.3). The access token handed back is the upstream
// BV-BRC session token captured at login.
type TokenHandler struct {
	authorizationService *services.AuthorizationService
	metrics              metrics.Recorder
}

func NewTokenHandler(
	as *services.AuthorizationService,
	recorder metrics.Recorder,
) *TokenHandler {
	return &TokenHandler{
		authorizationService: as,
		metrics:              recorder,
	}
}

// Token handles POST /oauth2/token (form-encoded).
func (h *TokenHandler) Token(c *gin.Context) {
	grant, err := h.authorizationService.ExchangeCode(
		c.Request.Context(),
		c.PostForm("code"),
		c.PostForm("client_id"),
		c.PostForm("redirect_uri"),
		c.PostForm("grant_type"),
		c.PostForm("code_verifier"),
	)
	if err != nil {
		h.recordExchangeFailure(err)
		respondOAuthError(c, err)
		return
	}

	h.metrics.RecordCodeExchange("success")
	log.Printf("token exchange successful for user: %s", grant.Username)

	c.JSON(http.StatusOK, gin.H{
		"access_token": grant.AccessToken,
		"token_type":   grant.TokenType,
		"expires_in":   grant.ExpiresIn,
		"scope":        grant.Scope,
	})
}

func (h *TokenHandler) recordExchangeFailure(err error) {
	if _, code := oauthError(err); code == errInvalidGrant {
		h.metrics.RecordCodeExchange(errInvalidGrant)
		return
	}
	h.metrics.RecordCodeExchange("error")
	if status, _ := oauthError(err); status >= http.StatusInternalServerError {
		log.Printf("token request error: %v", err)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
	"github.com/olsonanl/bvbrc-mcp-server/internal/upstream"
)

// OAuth error code constants (RFC 6749 §4.1.2.1, §5.2; RFC 7591 §3.2.2)
const (
	errInvalidRequest          = "invalid_request"
	errInvalidClient           = "invalid_client"
	errInvalidClientMetadata   = "invalid_client_metadata"
	errInvalidGrant            = "invalid_grant"
	errUnsupportedResponseType = "unsupported_response_type"
	errUnsupportedGrantType    = "unsupported_grant_type"
	errAccessDenied            = "access_denied"
	errServerError             = "server_error"
)

// oauthError maps a service error to its OAuth error code and HTTP status.
// Everything is handled locally and converted at the boundary; nothing
// propagates to the client as an unhandled fault.
func oauthError(err error) (status int, code string) {
	switch {
	case errors.Is(err, services.ErrMissingClientID),
		errors.Is(err, services.ErrMissingRedirectURI),
		errors.Is(err, services.ErrRedirectURINotAllowed),
		errors.Is(err, services.ErrRedirectURIMismatch),
		errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrMissingCode),
		errors.Is(err, services.ErrMissingGrantType):
		return http.StatusBadRequest, errInvalidRequest
	case errors.Is(err, services.ErrUnsupportedResponseType):
		return http.StatusBadRequest, errUnsupportedResponseType
	case errors.Is(err, services.ErrUnsupportedGrantType):
		return http.StatusBadRequest, errUnsupportedGrantType
	case errors.Is(err, services.ErrClientNotFound):
		return http.StatusBadRequest, errInvalidClient
	case errors.Is(err, services.ErrCodeNotFound),
		errors.Is(err, services.ErrCodeAlreadyUsed),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrClientIDMismatch),
		errors.Is(err, services.ErrBoundURIMismatch),
		errors.Is(err, services.ErrVerifierRequired),
		errors.Is(err, services.ErrVerifierInvalid):
		return http.StatusBadRequest, errInvalidGrant
	case errors.Is(err, upstream.ErrAuthFailed):
		return http.StatusUnauthorized, errAccessDenied
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusServiceUnavailable, errServerError
	default:
		return http.StatusInternalServerError, errServerError
	}
}

// respondOAuthError writes the standard JSON error body.
func respondOAuthError(c *gin.Context, err error) {
	status, code := oauthError(err)
	description := err.Error()
	if code == errAccessDenied {
		// Never leak upstream detail on credential failures.
		description = "Invalid username or password"
	}
	c.JSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}

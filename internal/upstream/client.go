// Package upstream calls the BV-BRC authentication service, which turns a
// username/password pair into an opaque session token.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrAuthFailed means the service rejected the credentials (any non-200
	// response, or an empty token body).
	ErrAuthFailed = errors.New("authentication service rejected credentials")
	// ErrUnavailable means the service could not be reached at all.
	ErrUnavailable = errors.New("authentication service unavailable")
)

// Authenticator exchanges credentials for an upstream session token.
// Implemented by Client; fake implementations are used in handler tests.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Client is a thin HTTP caller against the BV-BRC authentication endpoint.
// The endpoint accepts a form-encoded POST and returns the bare token string
// in the response body on HTTP 200.
type Client struct {
	authURL string
	client  *http.Client
}

// NewClient builds an authenticator client with a bounded timeout. No
// retries: authentication is a user-interactive, single-attempt operation.
func NewClient(authURL string, timeout time.Duration) *Client {
	return &Client{
		authURL: authURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Authenticate posts the credentials and returns the session token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.authURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response", ErrUnavailable)
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("%w: empty token body", ErrAuthFailed)
	}

	return token, nil
}

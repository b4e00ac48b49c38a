package store

import (
	"context"
	"errors"

	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
)

var (
	// ErrNotFound is returned by lookups when no entry exists for the key.
	ErrNotFound = errors.New("store: not found")
	// ErrCodeAlreadyUsed is returned by MarkCodeUsed when another exchange
	// already consumed the code. The check-and-set is atomic: under
	// concurrent duplicate exchanges exactly one caller succeeds.
	ErrCodeAlreadyUsed = errors.New("store: authorization code already used")
	// ErrDuplicateKey is returned when an insert collides with an existing key.
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// ClientStore persists dynamically registered OAuth clients. Clients are
// write-once: there is no update or delete.
type ClientStore interface {
	CreateClient(ctx context.Context, client *models.RegisteredClient) error
	GetClient(ctx context.Context, clientID string) (*models.RegisteredClient, error)
}

// CodeStore persists short-lived, single-use authorization codes.
type CodeStore interface {
	CreateCode(ctx context.Context, code *models.AuthorizationCode) error
	GetCode(ctx context.Context, code string) (*models.AuthorizationCode, error)

	// MarkCodeUsed flips the used flag exactly once. Concurrent callers on
	// the same code observe exactly one success; the rest receive
	// ErrCodeAlreadyUsed.
	MarkCodeUsed(ctx context.Context, code string) error
}

// TokenStore records tokens minted at exchange so they can later be
// recognized as valid bearer credentials.
type TokenStore interface {
	SaveToken(ctx context.Context, token *models.IssuedToken) error
	GetToken(ctx context.Context, token string) (*models.IssuedToken, error)
}

// Store bundles the three entity stores behind one injection point so the
// backend (memory, redis) can be swapped without touching protocol logic.
type Store interface {
	ClientStore
	CodeStore
	TokenStore

	// Health reports backend availability for the /health endpoint.
	Health(ctx context.Context) error
	Close() error
}

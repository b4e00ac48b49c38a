package store

import (
	"context"
	"sync"
	"time"

	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store with in-memory maps guarded by a RWMutex.
// This is the default backend and matches the broker's in-memory-only
// persistence model: a process restart loses all registered clients and
// in-flight codes and tokens. Suitable for single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]*models.RegisteredClient
	codes   map[string]*models.AuthorizationCode
	tokens  map[string]*models.IssuedToken

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:   make(map[string]*models.RegisteredClient),
		codes:     make(map[string]*models.AuthorizationCode),
		tokens:    make(map[string]*models.IssuedToken),
		stopSweep: make(chan struct{}),
	}
}

func (m *MemoryStore) CreateClient(ctx context.Context, client *models.RegisteredClient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[client.ClientID]; exists {
		return ErrDuplicateKey
	}
	cp := *client
	m.clients[client.ClientID] = &cp
	return nil
}

func (m *MemoryStore) GetClient(ctx context.Context, clientID string) (*models.RegisteredClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *client
	return &cp, nil
}

func (m *MemoryStore) CreateCode(ctx context.Context, code *models.AuthorizationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.codes[code.Code]; exists {
		return ErrDuplicateKey
	}
	cp := *code
	m.codes[code.Code] = &cp
	return nil
}

func (m *MemoryStore) GetCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.codes[code]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// MarkCodeUsed performs the single-use check-and-set under the write lock,
// so two concurrent exchanges of the same code resolve to exactly one winner.
func (m *MemoryStore) MarkCodeUsed(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.codes[code]
	if !exists {
		return ErrNotFound
	}
	if record.Used {
		return ErrCodeAlreadyUsed
	}
	record.Used = true
	return nil
}

func (m *MemoryStore) SaveToken(ctx context.Context, token *models.IssuedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *MemoryStore) GetToken(ctx context.Context, token string) (*models.IssuedToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.tokens[token]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// Health always succeeds for the memory store.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	m.sweepOnce.Do(func() { close(m.stopSweep) })
	return nil
}

// StartSweeper runs a periodic sweep of expired authorization codes to bound
// memory. Not required for protocol correctness (expiry is re-checked at
// redemption), so failures here are silent. Stops when Close is called.
func (m *MemoryStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweepExpiredCodes(time.Now())
			case <-m.stopSweep:
				return
			}
		}
	}()
}

func (m *MemoryStore) sweepExpiredCodes(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, record := range m.codes {
		if record.Used || now.After(record.ExpiresAt) {
			delete(m.codes, key)
			removed++
		}
	}
	return removed
}

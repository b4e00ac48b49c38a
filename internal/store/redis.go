package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olsonanl/bvbrc-mcp-server/internal/models"
)

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

const (
	clientKeyPrefix   = "oauth:client:"
	codeKeyPrefix     = "oauth:code:"
	codeUsedKeyPrefix = "oauth:code_used:"
	tokenKeyPrefix    = "oauth:token:"

	// Codes linger past their logical expiry so redemption of an expired
	// code reports invalid_grant rather than an unknown code.
	codeRetention = time.Hour
)

// RedisStore implements Store on Redis for deployments that need registered
// clients and in-flight codes to survive a process restart. The single-use
// invariant is enforced with SETNX on a side key, which gives the same
// exactly-once semantics as the memory store's check-and-set.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) CreateClient(ctx context.Context, client *models.RegisteredClient) error {
	data, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}
	ok, err := r.client.SetNX(ctx, clientKeyPrefix+client.ClientID, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store client: %w", err)
	}
	if !ok {
		return ErrDuplicateKey
	}
	return nil
}

func (r *RedisStore) GetClient(ctx context.Context, clientID string) (*models.RegisteredClient, error) {
	data, err := r.client.Get(ctx, clientKeyPrefix+clientID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read client: %w", err)
	}
	var client models.RegisteredClient
	if err := json.Unmarshal(data, &client); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client: %w", err)
	}
	return &client, nil
}

func (r *RedisStore) CreateCode(ctx context.Context, code *models.AuthorizationCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal code: %w", err)
	}
	ttl := time.Until(code.ExpiresAt) + codeRetention
	ok, err := r.client.SetNX(ctx, codeKeyPrefix+code.Code, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	if !ok {
		return ErrDuplicateKey
	}
	return nil
}

func (r *RedisStore) GetCode(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	data, err := r.client.Get(ctx, codeKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read code: %w", err)
	}
	var record models.AuthorizationCode
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal code: %w", err)
	}

	// The used flag lives on a side key so redemption can claim it atomically.
	used, err := r.client.Exists(ctx, codeUsedKeyPrefix+code).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read code state: %w", err)
	}
	record.Used = used > 0
	return &record, nil
}

// MarkCodeUsed claims the code with SETNX; only the first caller wins.
func (r *RedisStore) MarkCodeUsed(ctx context.Context, code string) error {
	exists, err := r.client.Exists(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	ok, err := r.client.SetNX(ctx, codeUsedKeyPrefix+code, "1", codeRetention).Result()
	if err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}
	if !ok {
		return ErrCodeAlreadyUsed
	}
	return nil
}

func (r *RedisStore) SaveToken(ctx context.Context, token *models.IssuedToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := r.client.Set(ctx, tokenKeyPrefix+token.Token, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *RedisStore) GetToken(ctx context.Context, token string) (*models.IssuedToken, error) {
	data, err := r.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var record models.IssuedToken
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &record, nil
}

func (r *RedisStore) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

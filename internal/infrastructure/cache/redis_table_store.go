package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tafa/dashboard/internal/domain/ledger"
)

// DefaultKeyPrefix namespaces table entries in Redis
const DefaultKeyPrefix = "dashboard:table:"

// Ensure RedisTableStore implements ledger.TableStore
var _ ledger.TableStore = (*RedisTableStore)(nil)

// RedisTableStore keeps normalized tables in Redis as JSON so several
// instances can share one loaded copy. Keys carry no TTL.
type RedisTableStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTableStore connects to Redis and verifies the connection
func NewRedisTableStore(cfg RedisConfig, keyPrefix string) (*RedisTableStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTableStoreWithClient(client, keyPrefix), nil
}

// NewRedisTableStoreWithClient creates a store with an existing Redis client
func NewRedisTableStoreWithClient(client *redis.Client, keyPrefix string) *RedisTableStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisTableStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisTableStore) key(name string) string {
	return s.keyPrefix + name
}

// Get fetches and decodes the table stored under name
func (s *RedisTableStore) Get(ctx context.Context, name string) (*ledger.Table, bool, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read table %q: %w", name, err)
	}

	var t ledger.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("failed to decode table %q: %w", name, err)
	}
	return &t, true, nil
}

// Set encodes t and stores it under name without expiry
func (s *RedisTableStore) Set(ctx context.Context, name string, t *ledger.Table) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode table %q: %w", name, err)
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store table %q: %w", name, err)
	}
	return nil
}

// Delete removes the entry for name
func (s *RedisTableStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete table %q: %w", name, err)
	}
	return nil
}

// Clear removes every key under the store prefix
func (s *RedisTableStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan table keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisTableStore) Close() error {
	return s.client.Close()
}

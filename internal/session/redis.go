package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis. TTLs are enforced by the
// server via SET with expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("session: nil redis client")
	}
	return &RedisStore{client: client}, nil
}

// Put stores the value under key, expiring after ttl.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("session: failed to set key: %w", err)
	}
	return nil
}

// Get returns the value under key, or ErrNotFound when absent/expired.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("session: failed to get key: %w", err)
	}
	return value, nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session: failed to delete key: %w", err)
	}
	return nil
}

// Healthcheck pings the server.
func (s *RedisStore) Healthcheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: healthcheck failed: %w", err)
	}
	return nil
}

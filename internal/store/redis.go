package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface backed by redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore instance around an existing
// client. The client's pool is shared with the stream client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Set stores a key-value pair with a TTL.
func (s *RedisStore) Set(key string, value []byte, ttl time.Duration) error {
	return s.client.Set(context.Background(), key, value, ttl).Err()
}

// Get retrieves a value by its key.
func (s *RedisStore) Get(key string) ([]byte, error) {
	value, err := s.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete removes a value by its key.
func (s *RedisStore) Delete(key string) error {
	return s.client.Del(context.Background(), key).Err()
}

// Exists checks if a key exists.
func (s *RedisStore) Exists(key string) (bool, error) {
	count, err := s.client.Exists(context.Background(), key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

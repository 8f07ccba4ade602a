package store

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewStore creates the cache store. A nil client selects the in-memory
// store, used by tests and single-process development runs.
func NewStore(client *redis.Client) Store {
	if client == nil {
		logrus.Info("Using in-memory cache store")
		return NewMemoryStore()
	}
	logrus.Debug("Using redis cache store")
	return NewRedisStore(client)
}

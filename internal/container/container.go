// Package container wires the application dependency graph.
package container

import (
	"logstream/internal/app"
	"logstream/internal/config"
	"logstream/internal/db"
	"logstream/internal/handler"
	"logstream/internal/metrics"
	"logstream/internal/router"
	"logstream/internal/services"
	"logstream/internal/store"
	"logstream/internal/stream"
	"logstream/internal/types"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
)

// NewRedisClient creates the shared redis client used by the front-end
// for both stream appends and cache operations. All handlers borrow
// connections from this one pool.
func NewRedisClient(configManager types.ConfigManager) *redis.Client {
	redisConfig := configManager.GetRedisConfig()
	return redis.NewClient(&redis.Options{
		Addr:         redisConfig.Addr,
		PoolSize:     redisConfig.PoolSize,
		MinIdleConns: 10,
	})
}

// newStreamClient binds the shared client to the stream contract.
func newStreamClient(client *redis.Client, configManager types.ConfigManager) stream.Client {
	return stream.NewRedisStream(client, configManager.GetStreamConfig())
}

// newStore binds the shared client to the cache.
func newStore(client *redis.Client) store.Store {
	return store.NewStore(client)
}

// BuildContainer creates and configures the dig container with all
// application dependencies.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		config.NewManager,
		db.NewDB,
		NewRedisClient,
		newStreamClient,
		newStore,
		services.NewLogStore,
		services.NewIngestService,
		services.NewQueryService,
		metrics.NewSampler,
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

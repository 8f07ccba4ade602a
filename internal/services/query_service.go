package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	app_errors "logstream/internal/errors"
	"logstream/internal/metrics"
	"logstream/internal/models"
	"logstream/internal/store"
	"logstream/internal/types"

	"github.com/sirupsen/logrus"
)

const (
	logsCacheKeyFormat = "cache:logs:%s:%d"
	statsCacheKey      = "cache:stats"
	recentDevicesK     = 10
)

// QueryService serves recent-log and statistics queries cache-first,
// falling back to the store and repopulating the cache. Cache absence,
// staleness, and errors are all tolerated: the database is the source
// of truth.
type QueryService struct {
	cache    store.Store
	logStore *LogStore
	cacheCfg types.CacheConfig
}

// NewQueryService creates a new QueryService instance.
func NewQueryService(cache store.Store, logStore *LogStore, configManager types.ConfigManager) *QueryService {
	return &QueryService{
		cache:    cache,
		logStore: logStore,
		cacheCfg: configManager.GetCacheConfig(),
	}
}

// RecentByDevice returns the newest rows for a device, served from the
// cache when possible.
func (s *QueryService) RecentByDevice(ctx context.Context, deviceID string, limit int) (*models.LogQueryResponse, *app_errors.APIError) {
	cacheKey := fmt.Sprintf(logsCacheKeyFormat, deviceID, limit)

	if cached, ok := s.cacheGet(cacheKey); ok {
		var logs []models.Log
		if err := json.Unmarshal(cached, &logs); err == nil {
			metrics.CacheHitsTotal.Inc()
			return &models.LogQueryResponse{
				Total:  len(logs),
				Source: "cache",
				Data:   logs,
			}, nil
		}
		// Corrupted payloads fall through to the store
		logrus.WithField("key", cacheKey).Warn("Discarding unreadable cache entry")
	}
	metrics.CacheMissesTotal.Inc()

	logs, err := s.logStore.RecentByDevice(ctx, deviceID, limit)
	if err != nil {
		logrus.WithError(err).WithField("device_id", deviceID).Error("Failed to query recent logs")
		return nil, app_errors.NewAPIError(app_errors.ErrStoreUnavailable, "Failed to query logs: "+err.Error())
	}

	s.cacheSet(cacheKey, logs, time.Duration(s.cacheCfg.LogsTTLSeconds)*time.Second)

	return &models.LogQueryResponse{
		Total:  len(logs),
		Source: "database",
		Data:   logs,
	}, nil
}

// Stats composes the summary statistics, served from the cache when
// possible.
func (s *QueryService) Stats(ctx context.Context) (*models.StatsResponse, *app_errors.APIError) {
	if cached, ok := s.cacheGet(statsCacheKey); ok {
		var stats models.StatsResponse
		if err := json.Unmarshal(cached, &stats); err == nil {
			metrics.CacheHitsTotal.Inc()
			return &stats, nil
		}
		logrus.Warn("Discarding unreadable stats cache entry")
	}
	metrics.CacheMissesTotal.Inc()

	total, err := s.logStore.CountTotal(ctx)
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrStoreUnavailable, "Failed to compute stats: "+err.Error())
	}
	byLevel, err := s.logStore.CountByLevel(ctx)
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrStoreUnavailable, "Failed to compute stats: "+err.Error())
	}
	devices, err := s.logStore.RecentDevices(ctx, recentDevicesK)
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrStoreUnavailable, "Failed to compute stats: "+err.Error())
	}

	stats := &models.StatsResponse{
		TotalLogs:     total,
		LogsByLevel:   byLevel,
		RecentDevices: devices,
	}

	s.cacheSet(statsCacheKey, stats, time.Duration(s.cacheCfg.StatsTTLSeconds)*time.Second)

	return stats, nil
}

// cacheGet reads a cache entry, observing operation duration. Any cache
// error behaves as a miss.
func (s *QueryService) cacheGet(key string) ([]byte, bool) {
	start := time.Now()
	value, err := s.cache.Get(key)
	metrics.RedisOperationDuration.WithLabelValues("cache_get").Observe(time.Since(start).Seconds())

	if err != nil {
		if err != store.ErrNotFound {
			logrus.WithError(err).WithField("key", key).Warn("Cache read failed, falling back to store")
		}
		return nil, false
	}
	return value, true
}

// cacheSet writes a cache entry. Failures are logged and ignored.
func (s *QueryService) cacheSet(key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to marshal cache payload")
		return
	}

	start := time.Now()
	err = s.cache.Set(key, payload, ttl)
	metrics.RedisOperationDuration.WithLabelValues("cache_set").Observe(time.Since(start).Seconds())
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed, continuing without cache")
	}
}

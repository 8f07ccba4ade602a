// Package services implements the ingestion, persistence, and query
// logic between the HTTP surface and the stream/cache/database clients.
package services

import (
	"context"
	"fmt"

	"logstream/internal/models"

	"gorm.io/gorm"
)

// LogStore provides the relational read and write paths for log rows.
type LogStore struct {
	db *gorm.DB
}

// NewLogStore creates a new LogStore instance.
func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// InsertBatch writes a batch of rows in a single transaction with one
// multi-row insert. The batch is all-or-nothing: on error the
// transaction rolls back and no rows from the batch remain.
func (s *LogStore) InsertBatch(ctx context.Context, logs []*models.Log) error {
	if len(logs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(logs, len(logs)).Error; err != nil {
			return fmt.Errorf("failed to batch insert logs: %w", err)
		}
		return nil
	})
}

// RecentByDevice returns the newest rows for one device, newest first.
func (s *LogStore) RecentByDevice(ctx context.Context, deviceID string, limit int) ([]models.Log, error) {
	var logs []models.Log
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent logs: %w", err)
	}
	return logs, nil
}

// CountTotal returns the total number of stored rows.
func (s *LogStore) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Log{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return count, nil
}

// CountByLevel returns per-level row counts.
func (s *LogStore) CountByLevel(ctx context.Context) (map[string]int64, error) {
	var rows []models.LevelCount
	err := s.db.WithContext(ctx).Model(&models.Log{}).
		Select("log_level, COUNT(*) AS count").
		Group("log_level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count logs by level: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.LogLevel] = row.Count
	}
	return counts, nil
}

// RecentDevices returns the k devices with the greatest max(created_at),
// ordered by that maximum, descending.
func (s *LogStore) RecentDevices(ctx context.Context, k int) ([]models.DeviceActivity, error) {
	var rows []models.DeviceActivity
	err := s.db.WithContext(ctx).Model(&models.Log{}).
		Select("device_id, MAX(created_at) AS last_seen").
		Group("device_id").
		Order("last_seen DESC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent devices: %w", err)
	}
	return rows, nil
}

// Ping verifies database connectivity for health checks.
func (s *LogStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

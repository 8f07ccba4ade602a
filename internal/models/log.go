// Package models defines the canonical log record, its relational
// mapping, and the request/response shapes of the HTTP surface.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recognised log levels. Values outside this set are accepted at the
// API boundary; only string bounds are enforced there.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// Log corresponds to the logs table. The log_data column is JSON-typed;
// timestamps are stored with timezone.
type Log struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID  string         `gorm:"type:varchar(50);not null;index:idx_logs_device_id;index:idx_logs_device_created,priority:1" json:"device_id"`
	LogLevel  string         `gorm:"type:varchar(50);not null;index:idx_logs_log_level" json:"log_level"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	LogData   datatypes.JSON `gorm:"type:json" json:"log_data"`
	Timestamp time.Time      `gorm:"type:timestamptz;not null" json:"timestamp"`
	CreatedAt time.Time      `gorm:"type:timestamptz;index:idx_logs_device_created,priority:2;index:idx_logs_created_at,sort:desc" json:"created_at"`
	IndexedAt time.Time      `gorm:"type:timestamptz" json:"indexed_at"`
}

// TableName overrides the default pluralised table name to the
// persisted-layout contract.
func (Log) TableName() string {
	return "logs"
}

// LevelCount is one row of the group-by-level statistics query.
type LevelCount struct {
	LogLevel string `json:"log_level"`
	Count    int64  `json:"count"`
}

// DeviceActivity is one row of the recent-devices statistics query:
// the latest created_at seen per device.
type DeviceActivity struct {
	DeviceID string    `json:"device_id"`
	LastSeen time.Time `json:"last_seen"`
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	app_errors "logstream/internal/errors"
)

// Validation bounds for incoming records.
const (
	MaxDeviceIDLength = 50
	MaxLogLevelLength = 50
	MaxMessageLength  = 5000
	MaxBatchSize      = 1000
)

// LogEntryRequest is the body of POST /api/log.
// LogData is optional free-form JSON; it defaults to an empty object.
type LogEntryRequest struct {
	DeviceID string          `json:"device_id"`
	LogLevel string          `json:"log_level"`
	Message  string          `json:"message"`
	LogData  json.RawMessage `json:"log_data,omitempty"`
}

// BatchLogEntryRequest is the body of POST /api/logs/batch.
type BatchLogEntryRequest struct {
	Logs []LogEntryRequest `json:"logs"`
}

// Validate enforces the request schema bounds. Level values outside the
// recognised set are accepted; only string lengths are enforced.
func (r *LogEntryRequest) Validate() *app_errors.APIError {
	if r.DeviceID == "" {
		return app_errors.NewValidationError("device_id is required")
	}
	if len(r.DeviceID) > MaxDeviceIDLength {
		return app_errors.NewValidationError(
			fmt.Sprintf("device_id must be at most %d bytes", MaxDeviceIDLength))
	}
	if r.LogLevel == "" {
		return app_errors.NewValidationError("log_level is required")
	}
	if len(r.LogLevel) > MaxLogLevelLength {
		return app_errors.NewValidationError(
			fmt.Sprintf("log_level must be at most %d bytes", MaxLogLevelLength))
	}
	if r.Message == "" {
		return app_errors.NewValidationError("message is required")
	}
	if len(r.Message) > MaxMessageLength {
		return app_errors.NewValidationError(
			fmt.Sprintf("message must be at most %d bytes", MaxMessageLength))
	}
	if r.LogData != nil {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r.LogData, &obj); err != nil {
			return app_errors.NewValidationError("log_data must be a JSON object")
		}
	}
	return nil
}

// CanonicalLogData returns the canonical JSON-object string form of
// LogData, "{}" when absent or null.
func (r *LogEntryRequest) CanonicalLogData() string {
	if len(r.LogData) == 0 || string(r.LogData) == "null" {
		return "{}"
	}
	return string(r.LogData)
}

// Validate enforces the batch envelope bounds and every contained record.
func (r *BatchLogEntryRequest) Validate() *app_errors.APIError {
	if len(r.Logs) == 0 {
		return app_errors.NewValidationError("logs must contain at least 1 record")
	}
	if len(r.Logs) > MaxBatchSize {
		return app_errors.NewValidationError(
			fmt.Sprintf("logs must contain at most %d records", MaxBatchSize))
	}
	for i := range r.Logs {
		if err := r.Logs[i].Validate(); err != nil {
			return app_errors.NewValidationError(
				fmt.Sprintf("logs[%d]: %s", i, err.Message))
		}
	}
	return nil
}

// LogEntryResponse is the enqueue acknowledgement for a single record.
// The record is queued, not yet persisted.
type LogEntryResponse struct {
	Status     string    `json:"status"`
	MessageID  string    `json:"message_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// BatchLogEntryResponse is the enqueue acknowledgement for a batch.
type BatchLogEntryResponse struct {
	Status     string    `json:"status"`
	Count      int       `json:"count"`
	MessageIDs []string  `json:"message_ids"`
	ReceivedAt time.Time `json:"received_at"`
}

// LogQueryResponse is the body of GET /api/logs/{device_id}.
type LogQueryResponse struct {
	Total  int    `json:"total"`
	Source string `json:"source"`
	Data   []Log  `json:"data"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	TotalLogs     int64            `json:"total_logs"`
	LogsByLevel   map[string]int64 `json:"logs_by_level"`
	RecentDevices []DeviceActivity `json:"recent_devices"`
}

// HealthCheckResponse is the body of GET /health.
type HealthCheckResponse struct {
	Status    string          `json:"status"`
	Instance  string          `json:"instance"`
	Checks    map[string]bool `json:"checks"`
	Timestamp time.Time       `json:"timestamp"`
}

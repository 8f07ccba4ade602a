package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Stream entry field names. Every entry on the stream carries all five
// fields as strings; log_data is a serialised JSON object.
const (
	FieldDeviceID  = "device_id"
	FieldLogLevel  = "log_level"
	FieldMessage   = "message"
	FieldLogData   = "log_data"
	FieldTimestamp = "timestamp"
)

// EntryFields builds the stream field map for one record. The timestamp
// is serialised as ISO 8601 with offset.
func EntryFields(req *LogEntryRequest, stampedAt time.Time) map[string]any {
	return map[string]any{
		FieldDeviceID:  req.DeviceID,
		FieldLogLevel:  req.LogLevel,
		FieldMessage:   req.Message,
		FieldLogData:   req.CanonicalLogData(),
		FieldTimestamp: stampedAt.Format(time.RFC3339Nano),
	}
}

// DecodeEntry converts stream entry fields back into a relational row.
// A missing or unparsable timestamp falls back to now; missing required
// fields are a decode error and the caller must still acknowledge the
// entry to prevent re-delivery loops.
func DecodeEntry(values map[string]any, now time.Time) (*Log, error) {
	deviceID, err := stringField(values, FieldDeviceID)
	if err != nil {
		return nil, err
	}
	logLevel, err := stringField(values, FieldLogLevel)
	if err != nil {
		return nil, err
	}
	message, err := stringField(values, FieldMessage)
	if err != nil {
		return nil, err
	}

	logData := "{}"
	if raw, ok := values[FieldLogData].(string); ok && raw != "" {
		logData = raw
	}

	stampedAt := now
	if raw, ok := values[FieldTimestamp].(string); ok && raw != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, raw); parseErr == nil {
			stampedAt = parsed
		}
	}

	return &Log{
		DeviceID:  deviceID,
		LogLevel:  logLevel,
		Message:   message,
		LogData:   datatypes.JSON(logData),
		Timestamp: stampedAt,
		CreatedAt: stampedAt,
		IndexedAt: now,
	}, nil
}

func stringField(values map[string]any, field string) (string, error) {
	raw, ok := values[field]
	if !ok {
		return "", fmt.Errorf("missing field %q", field)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	if value == "" {
		return "", errors.New("empty field " + field)
	}
	return value, nil
}

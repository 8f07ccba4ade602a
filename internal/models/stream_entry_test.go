package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEntryFields_RoundTrip tests that an encoded entry decodes to the
// same record
func TestEntryFields_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	stampedAt := time.Date(2025, 6, 1, 12, 30, 45, 123456789, loc)

	req := &LogEntryRequest{
		DeviceID: "device_001",
		LogLevel: "ERROR",
		Message:  "Database connection failed",
		LogData:  json.RawMessage(`{"error_code":"DB_CONN_001"}`),
	}

	values := EntryFields(req, stampedAt)
	assert.Equal(t, "device_001", values[FieldDeviceID])
	assert.Equal(t, "ERROR", values[FieldLogLevel])
	assert.Equal(t, `{"error_code":"DB_CONN_001"}`, values[FieldLogData])

	row, err := DecodeEntry(values, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "device_001", row.DeviceID)
	assert.Equal(t, "ERROR", row.LogLevel)
	assert.Equal(t, "Database connection failed", row.Message)
	assert.JSONEq(t, `{"error_code":"DB_CONN_001"}`, string(row.LogData))
	// The stored instant survives the round trip
	assert.True(t, row.Timestamp.Equal(stampedAt))
}

// TestEntryFields_DefaultLogData tests the empty-object default
func TestEntryFields_DefaultLogData(t *testing.T) {
	req := &LogEntryRequest{DeviceID: "d", LogLevel: "INFO", Message: "ok"}
	values := EntryFields(req, time.Now())
	assert.Equal(t, "{}", values[FieldLogData])
}

// TestDecodeEntry_Errors tests decode failures for malformed entries
func TestDecodeEntry_Errors(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		values map[string]any
	}{
		{
			name:   "missing device_id",
			values: map[string]any{FieldLogLevel: "INFO", FieldMessage: "ok"},
		},
		{
			name:   "non-string message",
			values: map[string]any{FieldDeviceID: "d", FieldLogLevel: "INFO", FieldMessage: 42},
		},
		{
			name:   "empty log_level",
			values: map[string]any{FieldDeviceID: "d", FieldLogLevel: "", FieldMessage: "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEntry(tt.values, now)
			assert.Error(t, err)
		})
	}
}

// TestDecodeEntry_TimestampFallback tests that a missing or malformed
// timestamp is stamped with now instead of failing the entry
func TestDecodeEntry_TimestampFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, timestamp := range []any{nil, "", "not-a-time"} {
		values := map[string]any{
			FieldDeviceID: "d",
			FieldLogLevel: "INFO",
			FieldMessage:  "ok",
		}
		if timestamp != nil {
			values[FieldTimestamp] = timestamp
		}

		row, err := DecodeEntry(values, now)
		require.NoError(t, err)
		assert.True(t, row.Timestamp.Equal(now))
	}
}

// TestDecodeEntry_UnknownLevel tests that workers accept levels outside
// the recognised set
func TestDecodeEntry_UnknownLevel(t *testing.T) {
	values := map[string]any{
		FieldDeviceID: "d",
		FieldLogLevel: "TRACE9",
		FieldMessage:  "ok",
	}
	row, err := DecodeEntry(values, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "TRACE9", row.LogLevel)
}

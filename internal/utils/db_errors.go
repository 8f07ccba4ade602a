package utils

import (
	"context"
	"errors"
	"strings"
)

// IsDBLockError reports whether err looks like a lock contention / deadlock error.
// It is intended for retry/backoff decisions.
func IsDBLockError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "lock timeout") ||
		strings.Contains(msg, "could not obtain lock") ||
		strings.Contains(msg, "could not serialize access")
}

// IsTransientDBError reports whether err is likely transient (timeout/cancel/
// lock contention/connection loss). It is intended for decisions like serving
// stale cache or retrying in background jobs.
func IsTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "i/o timeout") {
		return true
	}
	return IsDBLockError(err)
}

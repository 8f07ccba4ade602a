// Package stream provides the typed client for the durable append-only
// log stream and its consumer-group semantics.
package stream

import (
	"context"
	"time"
)

// Entry is one delivered stream entry: an opaque monotonically
// non-decreasing ID and the string-keyed record fields.
type Entry struct {
	ID     string
	Values map[string]any
}

// Client is the interface for the durable stream. Appends are trimmed
// to an approximate maximum length; when producers outpace consumers
// the oldest entries are discarded (backpressure by loss).
type Client interface {
	// Append adds one entry and returns its assigned ID.
	Append(ctx context.Context, values map[string]any) (string, error)

	// AppendMany appends a batch of entries in one network round-trip
	// and returns the assigned IDs in order.
	AppendMany(ctx context.Context, batch []map[string]any) ([]string, error)

	// EnsureGroup idempotently creates the consumer group;
	// "group already exists" is success.
	EnsureGroup(ctx context.Context) error

	// ReadGroup reads up to count entries never delivered to the
	// group, blocking up to block for arrivals. Delivered entries are
	// pending for the consumer until acknowledged.
	ReadGroup(ctx context.Context, consumer string, count int64, block time.Duration) ([]Entry, error)

	// Ack marks delivered entries as completed for the group.
	Ack(ctx context.Context, ids ...string) error

	// Len returns the current approximate stream length.
	Len(ctx context.Context) (int64, error)

	// Ping verifies connectivity for health checks.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

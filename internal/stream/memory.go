package stream

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStream is an in-process Client used by tests and development
// runs without redis. It models the consumer-group contract: each new
// entry is delivered to exactly one consumer, deliveries stay pending
// until acknowledged, and appends trim the oldest entries past the cap.
type MemoryStream struct {
	mu      sync.Mutex
	entries []Entry
	nextSeq uint64
	// deliveredSeq is the group cursor: sequence of the newest entry
	// already handed to some consumer.
	deliveredSeq uint64
	pending      map[string]string // entry ID -> consumer
	maxLen       int64
}

// NewMemoryStream creates a MemoryStream with the given approximate
// length cap.
func NewMemoryStream(maxLen int64) *MemoryStream {
	return &MemoryStream{
		pending: make(map[string]string),
		maxLen:  maxLen,
	}
}

// Append adds one entry and trims the oldest past the cap.
func (s *MemoryStream) Append(_ context.Context, values map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(values), nil
}

// AppendMany appends the whole batch atomically.
func (s *MemoryStream) AppendMany(_ context.Context, batch []map[string]any) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(batch))
	for i, values := range batch {
		ids[i] = s.appendLocked(values)
	}
	return ids, nil
}

func (s *MemoryStream) appendLocked(values map[string]any) string {
	s.nextSeq++
	id := fmt.Sprintf("%d-0", s.nextSeq)
	s.entries = append(s.entries, Entry{ID: id, Values: values})

	if excess := int64(len(s.entries)) - s.maxLen; excess > 0 {
		s.entries = s.entries[excess:]
	}
	return id
}

// EnsureGroup is idempotent; the single in-process group always exists.
func (s *MemoryStream) EnsureGroup(context.Context) error {
	return nil
}

// ReadGroup delivers up to count entries past the group cursor,
// blocking up to block for arrivals.
func (s *MemoryStream) ReadGroup(ctx context.Context, consumer string, count int64, block time.Duration) ([]Entry, error) {
	deadline := time.Now().Add(block)
	for {
		if entries := s.take(consumer, count); len(entries) > 0 {
			return entries, nil
		}
		if block <= 0 || time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (s *MemoryStream) take(consumer string, count int64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var taken []Entry
	for _, entry := range s.entries {
		if int64(len(taken)) >= count {
			break
		}
		seq := parseSeq(entry.ID)
		if seq <= s.deliveredSeq {
			continue
		}
		s.deliveredSeq = seq
		s.pending[entry.ID] = consumer
		taken = append(taken, entry)
	}
	return taken
}

// Ack marks delivered entries as completed.
func (s *MemoryStream) Ack(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.pending, id)
	}
	return nil
}

// Len returns the current stream length.
func (s *MemoryStream) Len(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

// PendingCount reports the number of delivered-but-unacknowledged
// entries. Test helper.
func (s *MemoryStream) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Ping always succeeds.
func (s *MemoryStream) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStream) Close() error {
	return nil
}

func parseSeq(id string) uint64 {
	var seq uint64
	fmt.Sscanf(id, "%d-0", &seq)
	return seq
}

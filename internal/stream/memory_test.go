package stream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryValues(i int) map[string]any {
	return map[string]any{"device_id": fmt.Sprintf("device_%03d", i), "message": "ok"}
}

// TestMemoryStream_AppendAndLen tests basic append and length
func TestMemoryStream_AppendAndLen(t *testing.T) {
	s := NewMemoryStream(100)
	ctx := context.Background()

	id1, err := s.Append(ctx, entryValues(1))
	require.NoError(t, err)
	id2, err := s.Append(ctx, entryValues(2))
	require.NoError(t, err)
	assert.Less(t, parseSeq(id1), parseSeq(id2))

	length, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}

// TestMemoryStream_AppendMany tests batch append ID ordering
func TestMemoryStream_AppendMany(t *testing.T) {
	s := NewMemoryStream(100)

	batch := make([]map[string]any, 10)
	for i := range batch {
		batch[i] = entryValues(i)
	}

	ids, err := s.AppendMany(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, ids, 10)
	for i := 1; i < len(ids); i++ {
		assert.Less(t, parseSeq(ids[i-1]), parseSeq(ids[i]))
	}
}

// TestMemoryStream_TrimBound tests that appends past the cap drop the
// oldest entries
func TestMemoryStream_TrimBound(t *testing.T) {
	s := NewMemoryStream(50)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		_, err := s.Append(ctx, entryValues(i))
		require.NoError(t, err)
	}

	length, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), length)

	// The survivors are the newest entries
	entries, err := s.ReadGroup(ctx, "consumer-1", 50, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "device_100", entries[0].Values["device_id"])
}

// TestMemoryStream_ConsumerGroupExclusivity tests that two consumers
// partition the entries: every entry is delivered to exactly one
func TestMemoryStream_ConsumerGroupExclusivity(t *testing.T) {
	s := NewMemoryStream(1000)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := s.Append(ctx, entryValues(i))
		require.NoError(t, err)
	}

	seen := make(map[string]int)
	for _, consumer := range []string{"worker-a", "worker-b"} {
		for {
			entries, err := s.ReadGroup(ctx, consumer, 10, 0)
			require.NoError(t, err)
			if len(entries) == 0 {
				break
			}
			for _, entry := range entries {
				seen[entry.ID]++
			}
		}
	}

	assert.Len(t, seen, 100)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "entry %s delivered %d times", id, count)
	}
}

// TestMemoryStream_AckClearsPending tests pending bookkeeping
func TestMemoryStream_AckClearsPending(t *testing.T) {
	s := NewMemoryStream(100)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := s.Append(ctx, entryValues(i))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	entries, err := s.ReadGroup(ctx, "worker-a", 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, 5, s.PendingCount())

	require.NoError(t, s.Ack(ctx, ids...))
	assert.Equal(t, 0, s.PendingCount())
}

// TestMemoryStream_ReadGroupBlocks tests the blocking read budget
func TestMemoryStream_ReadGroupBlocks(t *testing.T) {
	s := NewMemoryStream(100)
	ctx := context.Background()

	// Empty stream: returns after the block budget with no entries
	start := time.Now()
	entries, err := s.ReadGroup(ctx, "worker-a", 10, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// An arrival during the block window is delivered
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Append(ctx, entryValues(1))
	}()
	entries, err = s.ReadGroup(ctx, "worker-a", 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"logstream/internal/types"

	"github.com/redis/go-redis/v9"
)

// RedisStream implements the Client interface on redis streams.
type RedisStream struct {
	client *redis.Client
	name   string
	group  string
	maxLen int64
}

// NewRedisStream creates a stream client bound to the configured stream
// name, consumer group, and approximate length cap.
func NewRedisStream(client *redis.Client, cfg types.StreamConfig) *RedisStream {
	return &RedisStream{
		client: client,
		name:   cfg.Name,
		group:  cfg.ConsumerGroup,
		maxLen: cfg.MaxLen,
	}
}

// Append adds one entry, applying the approximate trim on the way in.
func (s *RedisStream) Append(ctx context.Context, values map[string]any) (string, error) {
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.name,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("stream append failed: %w", err)
	}
	return id, nil
}

// AppendMany pipelines the whole batch into one round-trip. The same
// trim policy applies per entry. A failure of any append fails the
// whole batch.
func (s *RedisStream) AppendMany(ctx context.Context, batch []map[string]any) ([]string, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringCmd, len(batch))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, values := range batch {
			cmds[i] = pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: s.name,
				MaxLen: s.maxLen,
				Approx: true,
				Values: values,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stream batch append failed: %w", err)
	}

	ids := make([]string, len(cmds))
	for i, cmd := range cmds {
		id, cmdErr := cmd.Result()
		if cmdErr != nil {
			return nil, fmt.Errorf("stream batch append failed: %w", cmdErr)
		}
		ids[i] = id
	}
	return ids, nil
}

// EnsureGroup creates the consumer group if it does not exist yet.
// BUSYGROUP means another worker won the race, which is success.
func (s *RedisStream) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.name, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", s.group, err)
	}
	return nil
}

// ReadGroup reads up to count new entries for the consumer, blocking up
// to block for arrivals. No entries is not an error.
func (s *RedisStream) ReadGroup(ctx context.Context, consumer string, count int64, block time.Duration) ([]Entry, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: consumer,
		Streams:  []string{s.name, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}

	var entries []Entry
	for _, str := range streams {
		for _, msg := range str.Messages {
			entries = append(entries, Entry{ID: msg.ID, Values: msg.Values})
		}
	}
	return entries, nil
}

// Ack marks delivered entries as completed for the group.
func (s *RedisStream) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.XAck(ctx, s.name, s.group, ids...).Err(); err != nil {
		return fmt.Errorf("stream ack failed: %w", err)
	}
	return nil
}

// Len returns the current approximate stream length.
func (s *RedisStream) Len(ctx context.Context) (int64, error) {
	return s.client.XLen(ctx, s.name).Result()
}

// Ping verifies connectivity.
func (s *RedisStream) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStream) Close() error {
	return s.client.Close()
}

// Package worker implements the consumer-group worker: batch reads from
// the stream, batch inserts into the store, and acknowledges exactly the
// entries whose transaction committed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"logstream/internal/metrics"
	"logstream/internal/models"
	"logstream/internal/services"
	"logstream/internal/stream"
	"logstream/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrTooManyErrors is returned by Run when the consecutive-error count
// reaches the configured threshold.
var ErrTooManyErrors = errors.New("worker: consecutive error threshold reached")

// Consumer states.
const (
	StateStarting int32 = iota
	StateRunning
	StateBackoff
	StateDraining
	StateStopped
)

var stateNames = map[int32]string{
	StateStarting: "starting",
	StateRunning:  "running",
	StateBackoff:  "backoff",
	StateDraining: "draining",
	StateStopped:  "stopped",
}

// Consumer is a long-lived stream consumer. One Consumer runs per
// process; the fleet is coordinated only by the stream's consumer
// group.
type Consumer struct {
	streamClient stream.Client
	logStore     *services.LogStore
	name         string
	cfg          types.WorkerConfig
	state        atomic.Int32
	draining     atomic.Bool
}

// NewConsumer creates a new Consumer instance. The consumer name comes
// from WORKER_NAME or is generated.
func NewConsumer(streamClient stream.Client, logStore *services.LogStore, configManager types.ConfigManager) *Consumer {
	cfg := configManager.GetWorkerConfig()
	name := cfg.Name
	if name == "" {
		name = "worker-" + uuid.NewString()[:8]
	}
	return &Consumer{
		streamClient: streamClient,
		logStore:     logStore,
		name:         name,
		cfg:          cfg,
	}
}

// Name returns the consumer name used within the group.
func (c *Consumer) Name() string {
	return c.name
}

// State returns the current lifecycle state.
func (c *Consumer) State() string {
	return stateNames[c.state.Load()]
}

// Drain requests a graceful stop: the current iteration completes, then
// the loop exits without issuing new reads.
func (c *Consumer) Drain() {
	c.draining.Store(true)
	c.state.Store(StateDraining)
	logrus.Infof("Worker %s draining", c.name)
}

// Run executes the consume loop until drained or the error threshold
// trips. The termination flag is checked at iteration boundaries; the
// blocking read itself has its own bounded budget.
func (c *Consumer) Run(ctx context.Context) error {
	c.state.Store(StateStarting)

	if err := c.streamClient.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"consumer":   c.name,
		"batch_size": c.cfg.BatchSize,
		"block_ms":   c.cfg.BlockMs,
	}).Info("Worker started")

	c.state.Store(StateRunning)
	consecutiveErrors := 0

	for !c.draining.Load() {
		entries, err := c.streamClient.ReadGroup(ctx, c.name,
			int64(c.cfg.BatchSize), time.Duration(c.cfg.BlockMs)*time.Millisecond)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			consecutiveErrors++
			metrics.LogsProcessingErrorsTotal.WithLabelValues("stream_read").Inc()
			logrus.WithError(err).Warnf("Stream read failed (%d consecutive errors)", consecutiveErrors)
			if consecutiveErrors >= c.cfg.ErrorThreshold {
				c.state.Store(StateStopped)
				return ErrTooManyErrors
			}
			c.backoff()
			continue
		}

		if len(entries) == 0 {
			consecutiveErrors = 0
			continue
		}

		rows, ids := c.decodeEntries(entries)

		if len(rows) > 0 {
			persisted, persistErrors := c.persistBatch(ctx, rows, consecutiveErrors)
			consecutiveErrors = persistErrors
			if !persisted {
				if consecutiveErrors >= c.cfg.ErrorThreshold {
					c.state.Store(StateStopped)
					return ErrTooManyErrors
				}
				// Drain requested mid-backoff; the unacked batch stays
				// pending for this consumer. Pending entries are not
				// read again or reclaimed: reads fetch new entries only.
				continue
			}
		}

		// Acknowledge every delivered ID, including those whose decode
		// failed, to prevent re-delivery loops. Ack failure is logged
		// and tolerated: the entries stay pending for this consumer and
		// are not read again, since reads fetch new entries only.
		if err := c.streamClient.Ack(ctx, ids...); err != nil {
			metrics.LogsProcessingErrorsTotal.WithLabelValues("ack").Inc()
			logrus.WithError(err).Warnf("Failed to acknowledge %d entries", len(ids))
		}
		consecutiveErrors = 0
	}

	c.state.Store(StateStopped)
	logrus.Infof("Worker %s stopped", c.name)
	return nil
}

// decodeEntries converts delivered entries into rows. Undecodable
// entries are skipped but their IDs are kept for acknowledgement.
func (c *Consumer) decodeEntries(entries []stream.Entry) ([]*models.Log, []string) {
	now := time.Now()
	rows := make([]*models.Log, 0, len(entries))
	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		ids = append(ids, entry.ID)
		row, err := models.DecodeEntry(entry.Values, now)
		if err != nil {
			metrics.LogsProcessingErrorsTotal.WithLabelValues("decode").Inc()
			logrus.WithError(err).WithField("entry_id", entry.ID).Warn("Skipping undecodable entry")
			continue
		}
		rows = append(rows, row)
	}
	return rows, ids
}

// persistBatch inserts the batch, retrying with backoff on failure. The
// batch is never acknowledged unless its transaction committed. Returns
// whether the batch was persisted and the updated consecutive-error
// count.
func (c *Consumer) persistBatch(ctx context.Context, rows []*models.Log, consecutiveErrors int) (bool, int) {
	for {
		start := time.Now()
		err := c.logStore.InsertBatch(ctx, rows)
		metrics.BatchProcessingDuration.WithLabelValues(strconv.Itoa(len(rows))).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.LogsPersistedTotal.Add(float64(len(rows)))
			return true, 0
		}

		consecutiveErrors++
		metrics.LogsProcessingErrorsTotal.WithLabelValues("db_insert").Inc()
		logrus.WithError(err).Warnf("Batch insert failed (%d consecutive errors), will retry", consecutiveErrors)

		if consecutiveErrors >= c.cfg.ErrorThreshold {
			return false, consecutiveErrors
		}
		c.backoff()
		if c.draining.Load() {
			return false, consecutiveErrors
		}
	}
}

// backoff sleeps the configured backoff period, waking early on drain.
func (c *Consumer) backoff() {
	previous := c.state.Swap(StateBackoff)

	deadline := time.Now().Add(time.Duration(c.cfg.BackoffSeconds) * time.Second)
	for time.Now().Before(deadline) {
		if c.draining.Load() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	if !c.draining.Load() && previous == StateRunning {
		c.state.Store(StateRunning)
	}
}

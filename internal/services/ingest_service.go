package services

import (
	"context"
	"strconv"
	"time"

	app_errors "logstream/internal/errors"
	"logstream/internal/metrics"
	"logstream/internal/models"
	"logstream/internal/stream"
	"logstream/internal/types"

	"github.com/sirupsen/logrus"
)

// IngestService validates nothing itself; it canonicalises records,
// stamps the enqueue timestamp, and appends to the stream. The caller
// receives the acknowledgement before persistence happens.
type IngestService struct {
	streamClient stream.Client
	location     *time.Location
}

// NewIngestService creates a new IngestService instance. The stamping
// zone comes from configuration (default Asia/Taipei).
func NewIngestService(streamClient stream.Client, configManager types.ConfigManager) *IngestService {
	location, err := time.LoadLocation(configManager.GetTimezone())
	if err != nil {
		logrus.WithError(err).Warnf("Failed to load timezone %q, using UTC", configManager.GetTimezone())
		location = time.UTC
	}
	return &IngestService{
		streamClient: streamClient,
		location:     location,
	}
}

// Enqueue appends one record to the stream and returns the "queued"
// acknowledgement with the assigned stream ID.
func (s *IngestService) Enqueue(ctx context.Context, req *models.LogEntryRequest) (*models.LogEntryResponse, *app_errors.APIError) {
	now := time.Now().In(s.location)

	start := time.Now()
	id, err := s.streamClient.Append(ctx, models.EntryFields(req, now))
	metrics.RedisOperationDuration.WithLabelValues("xadd").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StreamMessagesTotal.WithLabelValues("failed").Inc()
		logrus.WithError(err).WithField("device_id", req.DeviceID).Error("Failed to enqueue log")
		return nil, app_errors.NewStreamError(err)
	}

	metrics.StreamMessagesTotal.WithLabelValues("queued").Inc()
	metrics.LogsReceivedTotal.WithLabelValues(req.DeviceID, req.LogLevel).Inc()

	return &models.LogEntryResponse{
		Status:     "queued",
		MessageID:  id,
		ReceivedAt: now,
	}, nil
}

// EnqueueBatch stamps a single current time for the whole batch and
// pipelines all appends in one call. A single failure fails the whole
// batch; no partial success is reported.
func (s *IngestService) EnqueueBatch(ctx context.Context, req *models.BatchLogEntryRequest) (*models.BatchLogEntryResponse, *app_errors.APIError) {
	now := time.Now().In(s.location)

	batch := make([]map[string]any, len(req.Logs))
	for i := range req.Logs {
		batch[i] = models.EntryFields(&req.Logs[i], now)
	}

	start := time.Now()
	ids, err := s.streamClient.AppendMany(ctx, batch)
	elapsed := time.Since(start)
	metrics.RedisOperationDuration.WithLabelValues("xadd_pipeline").Observe(elapsed.Seconds())
	metrics.BatchProcessingDuration.WithLabelValues(strconv.Itoa(len(batch))).Observe(elapsed.Seconds())

	if err != nil {
		metrics.StreamMessagesTotal.WithLabelValues("failed").Inc()
		logrus.WithError(err).WithField("batch_size", len(batch)).Error("Failed to enqueue log batch")
		return nil, app_errors.NewStreamError(err)
	}

	for i := range req.Logs {
		metrics.StreamMessagesTotal.WithLabelValues("queued").Inc()
		metrics.LogsReceivedTotal.WithLabelValues(req.Logs[i].DeviceID, req.Logs[i].LogLevel).Inc()
	}

	return &models.BatchLogEntryResponse{
		Status:     "queued",
		Count:      len(ids),
		MessageIDs: ids,
		ReceivedAt: now,
	}, nil
}

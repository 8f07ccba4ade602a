package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"logstream/internal/config"
	"logstream/internal/models"
	"logstream/internal/services"
	"logstream/internal/stream"
	"logstream/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestConfigManager(t *testing.T) types.ConfigManager {
	t.Helper()
	t.Setenv("WORKER_NAME", "worker-test")
	t.Setenv("WORKER_BLOCK_MS", "50")
	t.Setenv("WORKER_BACKOFF_SECONDS", "0")
	t.Setenv("WORKER_ERROR_THRESHOLD", "3")

	configManager, err := config.NewManager()
	require.NoError(t, err)
	return configManager
}

func newMockLogStore(t *testing.T) (*services.LogStore, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)

	return services.NewLogStore(gormDB), mock
}

func enqueueEntries(t *testing.T, memStream *stream.MemoryStream, n int) {
	t.Helper()
	now := time.Now()
	for i := 0; i < n; i++ {
		req := &models.LogEntryRequest{DeviceID: "device_001", LogLevel: "INFO", Message: "ok"}
		_, err := memStream.Append(context.Background(), models.EntryFields(req, now))
		require.NoError(t, err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

// TestConsumer_PersistsAndAcks tests the happy path: delivered entries
// are inserted in one transaction and acknowledged
func TestConsumer_PersistsAndAcks(t *testing.T) {
	configManager := newTestConfigManager(t)
	memStream := stream.NewMemoryStream(1000)
	logStore, mock := newMockLogStore(t)

	enqueueEntries(t, memStream, 5)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3).AddRow(4).AddRow(5))
	mock.ExpectCommit()

	consumer := NewConsumer(memStream, logStore, configManager)
	assert.Equal(t, "worker-test", consumer.Name())

	done := make(chan error, 1)
	go func() { done <- consumer.Run(context.Background()) }()

	waitFor(t, 5*time.Second, func() bool {
		return memStream.PendingCount() == 0 && mock.ExpectationsWereMet() == nil
	})

	consumer.Drain()
	require.NoError(t, <-done)
	assert.Equal(t, "stopped", consumer.State())
}

// TestConsumer_NoAckWithoutCommit tests that a failed batch insert is
// never acknowledged and trips the error threshold
func TestConsumer_NoAckWithoutCommit(t *testing.T) {
	configManager := newTestConfigManager(t)
	memStream := stream.NewMemoryStream(1000)
	logStore, mock := newMockLogStore(t)

	enqueueEntries(t, memStream, 3)

	// Threshold is 3: every attempt fails, each in its own rolled-back
	// transaction
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "logs"`).WillReturnError(errors.New("connection refused"))
		mock.ExpectRollback()
	}

	consumer := NewConsumer(memStream, logStore, configManager)

	err := consumer.Run(context.Background())
	assert.ErrorIs(t, err, ErrTooManyErrors)

	// The delivered batch stays pending: no ack without commit
	assert.Equal(t, 3, memStream.PendingCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestConsumer_DecodeFailuresStillAcked tests that undecodable entries
// are skipped but acknowledged, while valid rows persist
func TestConsumer_DecodeFailuresStillAcked(t *testing.T) {
	configManager := newTestConfigManager(t)
	memStream := stream.NewMemoryStream(1000)
	logStore, mock := newMockLogStore(t)

	// One valid entry and one missing its required fields
	enqueueEntries(t, memStream, 1)
	_, err := memStream.Append(context.Background(), map[string]any{"garbage": "x"})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	consumer := NewConsumer(memStream, logStore, configManager)

	done := make(chan error, 1)
	go func() { done <- consumer.Run(context.Background()) }()

	waitFor(t, 5*time.Second, func() bool {
		return memStream.PendingCount() == 0 && mock.ExpectationsWereMet() == nil
	})

	consumer.Drain()
	require.NoError(t, <-done)
}

// TestConsumer_DrainWithoutTraffic tests the signal-driven drain path
func TestConsumer_DrainWithoutTraffic(t *testing.T) {
	configManager := newTestConfigManager(t)
	memStream := stream.NewMemoryStream(1000)
	logStore, _ := newMockLogStore(t)

	consumer := NewConsumer(memStream, logStore, configManager)

	done := make(chan error, 1)
	go func() { done <- consumer.Run(context.Background()) }()

	waitFor(t, 2*time.Second, func() bool { return consumer.State() == "running" })
	consumer.Drain()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain in time")
	}
	assert.Equal(t, "stopped", consumer.State())
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"logstream/internal/config"
	"logstream/internal/services"
	"logstream/internal/store"
	"logstream/internal/stream"
	"logstream/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestConfigManager(t *testing.T) types.ConfigManager {
	t.Helper()
	configManager, err := config.NewManager()
	require.NoError(t, err)
	return configManager
}

// newTestServer wires a Server over a memory stream, memory cache, and
// a sqlmock-backed store.
func newTestServer(t *testing.T) (*Server, *stream.MemoryStream, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	configManager := newTestConfigManager(t)
	memStream := stream.NewMemoryStream(1000)
	cache := store.NewMemoryStore()
	t.Cleanup(func() { cache.Close() })

	logStore := services.NewLogStore(gormDB)

	server := NewServer(ServerParams{
		IngestService: services.NewIngestService(memStream, configManager),
		QueryService:  services.NewQueryService(cache, logStore, configManager),
		LogStore:      logStore,
		StreamClient:  memStream,
		ConfigManager: configManager,
	})
	return server, memStream, mock
}

func performJSON(t *testing.T, handlerFunc gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handlerFunc(c)
	return w
}

// TestEnqueueLog_Success tests the single-record enqueue ack
func TestEnqueueLog_Success(t *testing.T) {
	server, memStream, _ := newTestServer(t)

	body := `{"device_id":"device_001","log_level":"ERROR","message":"Database connection failed","log_data":{"error_code":"DB_CONN_001"}}`
	w := performJSON(t, server.EnqueueLog, http.MethodPost, "/api/log", body)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "queued", response["status"])
	assert.Regexp(t, `^\d+-\d+$`, response["message_id"])
	assert.Contains(t, response, "received_at")

	length, err := memStream.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

// TestEnqueueLog_ValidationRejections tests 422 responses with no
// stream side effects
func TestEnqueueLog_ValidationRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"device_id":"device_001","log_level":"INFO","message":""}`},
		{"empty device_id", `{"device_id":"","log_level":"INFO","message":"ok"}`},
		{"oversized message", `{"device_id":"device_001","log_level":"INFO","message":"` + strings.Repeat("m", 5001) + `"}`},
		{"log_data not an object", `{"device_id":"device_001","log_level":"INFO","message":"ok","log_data":[1]}`},
		{"malformed json", `{"device_id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, memStream, _ := newTestServer(t)

			w := performJSON(t, server.EnqueueLog, http.MethodPost, "/api/log", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			length, err := memStream.Len(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(0), length, "rejected request must not touch the stream")
		})
	}
}

// TestEnqueueBatch_Success tests the batch enqueue ack
func TestEnqueueBatch_Success(t *testing.T) {
	server, memStream, _ := newTestServer(t)

	var logs []string
	for i := 0; i < 100; i++ {
		logs = append(logs, `{"device_id":"device_001","log_level":"INFO","message":"ok"}`)
	}
	body := `{"logs":[` + strings.Join(logs, ",") + `]}`

	w := performJSON(t, server.EnqueueBatch, http.MethodPost, "/api/logs/batch", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "queued", response["status"])
	assert.Equal(t, float64(100), response["count"])
	assert.Len(t, response["message_ids"], 100)

	length, err := memStream.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), length)
}

// TestEnqueueBatch_Bounds tests empty and oversized batches
func TestEnqueueBatch_Bounds(t *testing.T) {
	server, memStream, _ := newTestServer(t)

	w := performJSON(t, server.EnqueueBatch, http.MethodPost, "/api/logs/batch", `{"logs":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var logs []string
	for i := 0; i < 1001; i++ {
		logs = append(logs, `{"device_id":"d","log_level":"INFO","message":"ok"}`)
	}
	w = performJSON(t, server.EnqueueBatch, http.MethodPost, "/api/logs/batch", `{"logs":[`+strings.Join(logs, ",")+`]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	length, err := memStream.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)
}

// TestGetDeviceLogs_LimitValidation tests the limit bounds
func TestGetDeviceLogs_LimitValidation(t *testing.T) {
	server, _, _ := newTestServer(t)

	for _, limit := range []string{"0", "1001", "-5", "abc"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/logs/device_001?limit="+limit, nil)
		c.Params = gin.Params{{Key: "device_id", Value: "device_001"}}

		server.GetDeviceLogs(c)
		assert.Equalf(t, http.StatusUnprocessableEntity, w.Code, "limit=%s", limit)
	}
}

// TestGetDeviceLogs_Success tests the query path end to end with the
// cache source transition
func TestGetDeviceLogs_Success(t *testing.T) {
	server, _, mock := newTestServer(t)

	rows := sqlmock.NewRows([]string{"id", "device_id", "log_level", "message", "log_data"}).
		AddRow(1, "device_001", "ERROR", "boom", []byte(`{}`))
	mock.ExpectQuery(`SELECT \* FROM "logs" WHERE device_id = `).WillReturnRows(rows)

	get := func() map[string]any {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/logs/device_001?limit=10", nil)
		c.Params = gin.Params{{Key: "device_id", Value: "device_001"}}

		server.GetDeviceLogs(c)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response
	}

	first := get()
	assert.Equal(t, "database", first["source"])
	assert.Equal(t, float64(1), first["total"])

	second := get()
	assert.Equal(t, "cache", second["source"])
	assert.Equal(t, first["total"], second["total"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

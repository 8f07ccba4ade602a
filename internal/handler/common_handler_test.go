package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealth_Success tests a healthy stream and store
func TestHealth_Success(t *testing.T) {
	server, _, mock := newTestServer(t)

	mock.ExpectPing()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "logstream-api", response["instance"])
	assert.Contains(t, response, "timestamp")

	checks, ok := response["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, checks["stream"])
	assert.Equal(t, true, checks["store"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestHealth_StoreUnavailable tests the degraded status when the
// database ping fails
func TestHealth_StoreUnavailable(t *testing.T) {
	server, _, mock := newTestServer(t)

	mock.ExpectPing().WillReturnError(assert.AnError)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unhealthy", response["status"])

	checks, ok := response["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, checks["stream"])
	assert.Equal(t, false, checks["store"])
}

// TestRoot tests the service descriptor
func TestRoot(t *testing.T) {
	server, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	server.Root(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "logstream", response["service"])
	assert.Contains(t, response, "endpoints")
}

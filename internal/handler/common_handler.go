package handler

import (
	"context"
	"time"

	"logstream/internal/models"
	"logstream/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 5 * time.Second

// Health handles GET /health. Status is "healthy" iff both the stream
// and the store respond within the probe deadline.
func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]bool{
		"stream": true,
		"store":  true,
	}

	if err := s.streamClient.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check: stream unreachable")
		checks["stream"] = false
	}
	if err := s.logStore.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check: store unreachable")
		checks["store"] = false
	}

	status := "healthy"
	if !checks["stream"] || !checks["store"] {
		status = "unhealthy"
	}

	response.JSON(c, models.HealthCheckResponse{
		Status:    status,
		Instance:  s.configManager.GetInstanceName(),
		Checks:    checks,
		Timestamp: time.Now(),
	})
}

// Root handles GET /: a small service descriptor.
func (s *Server) Root(c *gin.Context) {
	response.JSON(c, gin.H{
		"service":  "logstream",
		"instance": s.configManager.GetInstanceName(),
		"endpoints": []string{
			"POST /api/log",
			"POST /api/logs/batch",
			"GET /api/logs/{device_id}",
			"GET /api/stats",
			"GET /health",
			"GET /metrics",
		},
	})
}

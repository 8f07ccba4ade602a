package handler

import (
	"strconv"

	app_errors "logstream/internal/errors"
	"logstream/internal/models"
	"logstream/internal/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// EnqueueLog handles POST /api/log: validate, stamp, append to the
// stream, and acknowledge "queued" before persistence.
func (s *Server) EnqueueLog(c *gin.Context) {
	var req models.LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if validationErr := req.Validate(); validationErr != nil {
		response.Error(c, validationErr)
		return
	}

	result, apiErr := s.ingestService.Enqueue(c.Request.Context(), &req)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	response.JSON(c, result)
}

// EnqueueBatch handles POST /api/logs/batch: 1..1000 records stamped
// with a single time and pipelined in one append call. A single failure
// fails the whole batch.
func (s *Server) EnqueueBatch(c *gin.Context) {
	var req models.BatchLogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if validationErr := req.Validate(); validationErr != nil {
		response.Error(c, validationErr)
		return
	}

	result, apiErr := s.ingestService.EnqueueBatch(c.Request.Context(), &req)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	response.JSON(c, result)
}

// GetDeviceLogs handles GET /api/logs/:device_id?limit=N with the
// cache-first read path.
func (s *Server) GetDeviceLogs(c *gin.Context) {
	deviceID := c.Param("device_id")
	if deviceID == "" || len(deviceID) > models.MaxDeviceIDLength {
		response.Error(c, app_errors.NewValidationError("invalid device_id"))
		return
	}

	limit := defaultQueryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxQueryLimit {
			response.Error(c, app_errors.NewValidationError("limit must be between 1 and 1000"))
			return
		}
		limit = parsed
	}

	result, apiErr := s.queryService.RecentByDevice(c.Request.Context(), deviceID, limit)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	response.JSON(c, result)
}

// Stats handles GET /api/stats.
func (s *Server) Stats(c *gin.Context) {
	result, apiErr := s.queryService.Stats(c.Request.Context())
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}

	response.JSON(c, result)
}

package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// staticSegments are path segments never collapsed to a placeholder.
var staticSegments = map[string]struct{}{
	"api":          {},
	"log":          {},
	"logs":         {},
	"health":       {},
	"stats":        {},
	"metrics":      {},
	"docs":         {},
	"openapi.json": {},
}

// NormalizeRoute collapses dynamic path segments to {param} so that
// telemetry route labels stay low-cardinality. A segment is dynamic if
// it contains a digit, or is longer than 10 characters and not in the
// known-static set.
func NormalizeRoute(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, static := staticSegments[segment]; static {
			continue
		}
		if containsDigit(segment) || len(segment) > 10 {
			segments[i] = "{param}"
		}
	}
	return strings.Join(segments, "/")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// Middleware records method, route template, status, duration, and
// request/response sizes for every request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		route := NormalizeRoute(c.Request.URL.Path)
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start)

		HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
		if requestSize > 0 {
			HTTPRequestSizeBytes.WithLabelValues(method, route).Observe(float64(requestSize))
		}
		if size := c.Writer.Size(); size > 0 {
			HTTPResponseSizeBytes.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}

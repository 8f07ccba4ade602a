// Package middleware provides HTTP middleware for the application
package middleware

import (
	"context"
	"strings"
	"time"

	app_errors "logstream/internal/errors"
	"logstream/internal/metrics"
	"logstream/internal/response"
	"logstream/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger creates a high-performance logging middleware
func Logger(config types.LogConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		method := c.Request.Method
		statusCode := c.Writer.Status()

		// Filter health check and other monitoring endpoint logs to reduce noise
		if isMonitoringEndpoint(path) {
			// Only log errors for monitoring endpoints
			if statusCode >= 400 {
				logrus.Warnf("%s %s - %d - %v", method, path, statusCode, latency)
			}
			return
		}

		// Choose log level based on status code
		if statusCode >= 500 {
			logrus.Errorf("%s %s - %d - %v", method, path, statusCode, latency)
		} else if statusCode >= 400 {
			logrus.Warnf("%s %s - %d - %v", method, path, statusCode, latency)
		} else {
			logrus.Infof("%s %s - %d - %v", method, path, statusCode, latency)
		}
	}
}

// CORS creates a CORS middleware with efficient preflight handling
func CORS(config types.CORSConfig) gin.HandlerFunc {
	// Pre-compute joined strings for better performance
	allowedMethods := strings.Join(config.AllowedMethods, ", ")
	allowedHeaders := strings.Join(config.AllowedHeaders, ", ")

	// Create a map for faster origin lookup
	allowedOriginsMap := make(map[string]bool, len(config.AllowedOrigins))
	hasWildcard := false
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			hasWildcard = true
		} else {
			allowedOriginsMap[origin] = true
		}
	}
	// Clear map only when wildcard is used without credentials.
	// When credentials are allowed, we still need the explicit allowlist for origin validation.
	if hasWildcard && !config.AllowCredentials {
		allowedOriginsMap = nil
	}

	return func(c *gin.Context) {
		if !config.Enabled {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")

		// Fast path: handle preflight requests immediately
		if c.Request.Method == "OPTIONS" {
			if isOriginAllowed(origin, hasWildcard, config.AllowCredentials, allowedOriginsMap) {
				setAllowOriginHeader(c, origin, hasWildcard, config.AllowCredentials)
				c.Header("Access-Control-Allow-Methods", allowedMethods)
				c.Header("Access-Control-Allow-Headers", allowedHeaders)
				if config.AllowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				// Add cache control for preflight to reduce requests
				c.Header("Access-Control-Max-Age", "86400") // 24 hours
			}

			c.AbortWithStatus(204)
			return
		}

		// For actual requests, check origin and set headers
		if isOriginAllowed(origin, hasWildcard, config.AllowCredentials, allowedOriginsMap) {
			setAllowOriginHeader(c, origin, hasWildcard, config.AllowCredentials)
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
			if config.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		c.Next()
	}
}

// isOriginAllowed checks if the origin is allowed based on CORS configuration
func isOriginAllowed(origin string, hasWildcard, allowCredentials bool, allowedOriginsMap map[string]bool) bool {
	if hasWildcard && !allowCredentials {
		// Wildcard is only valid when credentials are not allowed
		return true
	}
	// Origin must be in the explicit allowlist when credentials are enabled
	return allowedOriginsMap[origin]
}

// setAllowOriginHeader sets the Access-Control-Allow-Origin header and Vary header if needed
func setAllowOriginHeader(c *gin.Context, origin string, hasWildcard, allowCredentials bool) {
	if hasWildcard && !allowCredentials {
		c.Header("Access-Control-Allow-Origin", "*")
	} else {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
	}
}

// Recovery creates a recovery middleware with custom error handling.
// Any otherwise-uncaught fault becomes a 500 {error, detail, instance}
// with a counter increment; validation 4xx responses never pass
// through here.
func Recovery(instance string) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.Errorf("Panic recovered: %v", recovered)
		metrics.UnhandledErrorsTotal.Inc()
		response.InternalError(c, instance)
		c.Abort()
	})
}

// ErrorHandler creates an error handling middleware
func ErrorHandler(instance string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Handle any errors that occurred during request processing
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			// Check if it's our custom error type
			if apiErr, ok := err.(*app_errors.APIError); ok {
				response.Error(c, apiErr)
				return
			}

			// Any other error is an uncaught fault
			logrus.Errorf("Unhandled error: %v", err)
			metrics.UnhandledErrorsTotal.Inc()
			response.InternalError(c, instance)
		}
	}
}

// RateLimiter creates a simple rate limiting middleware
func RateLimiter(config types.PerformanceConfig) gin.HandlerFunc {
	// Simple semaphore-based rate limiting
	semaphore := make(chan struct{}, config.MaxConcurrentRequests)

	return func(c *gin.Context) {
		select {
		case semaphore <- struct{}{}:
			defer func() { <-semaphore }()
			c.Next()
		default:
			response.Error(c, app_errors.NewAPIError(app_errors.ErrInternalServer, "Too many concurrent requests"))
			c.Abort()
		}
	}
}

// SecurityHeaders creates a middleware to add security-related headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing attacks
		c.Header("X-Content-Type-Options", "nosniff")

		// Control referrer information leakage
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// RequestDeadline propagates a per-request deadline to downstream
// stream and database operations.
func RequestDeadline(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// isMonitoringEndpoint checks if the path is a monitoring endpoint
func isMonitoringEndpoint(path string) bool {
	monitoringPaths := []string{"/health", "/metrics"}
	for _, monitoringPath := range monitoringPaths {
		if path == monitoringPath {
			return true
		}
	}
	return false
}

package router

import (
	"time"

	"logstream/internal/handler"
	"logstream/internal/metrics"
	"logstream/internal/middleware"
	"logstream/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with the full middleware stack and
// the pipeline's routes.
func NewRouter(
	serverHandler *handler.Server,
	configManager types.ConfigManager,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	requestTimeout := time.Duration(configManager.GetEffectiveServerConfig().RequestTimeout) * time.Second
	instance := configManager.GetInstanceName()

	router.Use(middleware.Recovery(instance))
	router.Use(middleware.ErrorHandler(instance))
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.RateLimiter(configManager.GetPerformanceConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestDeadline(requestTimeout))
	router.Use(metrics.Middleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerSystemRoutes(router, serverHandler)
	registerAPIRoutes(router, serverHandler)

	return router
}

// registerSystemRoutes wires the monitoring endpoints.
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/", serverHandler.Root)
	router.GET("/health", serverHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerAPIRoutes wires the ingest and query endpoints.
func registerAPIRoutes(router *gin.Engine, serverHandler *handler.Server) {
	api := router.Group("/api")
	{
		api.POST("/log", serverHandler.EnqueueLog)
		api.POST("/logs/batch", serverHandler.EnqueueBatch)
		api.GET("/logs/:device_id", serverHandler.GetDeviceLogs)
		api.GET("/stats", serverHandler.Stats)
	}
}

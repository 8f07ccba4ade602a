// Package app provides the main application logic and lifecycle management.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"logstream/internal/metrics"
	"logstream/internal/models"
	"logstream/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// App holds all services and manages the application lifecycle.
type App struct {
	engine        *gin.Engine
	configManager types.ConfigManager
	sampler       *metrics.Sampler
	redisClient   *redis.Client
	db            *gorm.DB
	httpServer    *http.Server
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	Engine        *gin.Engine
	ConfigManager types.ConfigManager
	Sampler       *metrics.Sampler
	RedisClient   *redis.Client
	DB            *gorm.DB
}

// NewApp is the constructor for App, with dependencies injected by dig.
func NewApp(params AppParams) *App {
	return &App{
		engine:        params.Engine,
		configManager: params.ConfigManager,
		sampler:       params.Sampler,
		redisClient:   params.RedisClient,
		db:            params.DB,
	}
}

// Start runs the application, it is a non-blocking call.
func (a *App) Start() error {
	// Database migration: the logs table and its indexes
	if err := a.db.AutoMigrate(&models.Log{}); err != nil {
		return fmt.Errorf("database auto-migration failed: %w", err)
	}
	logrus.Info("Database auto-migration completed.")

	// Periodic host-resource and stream-depth sampling
	a.sampler.Start()

	a.configManager.DisplayServerConfig()

	serverConfig := a.configManager.GetEffectiveServerConfig()
	a.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:        a.engine,
		ReadTimeout:    time.Duration(serverConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(serverConfig.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(serverConfig.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start HTTP server in a new goroutine
	go func() {
		logrus.Infof("Log ingestion server started on http://%s:%d", serverConfig.Host, serverConfig.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the application: drain in-flight requests,
// stop background services, then close the stream/cache and database
// connections.
func (a *App) Stop(ctx context.Context) {
	logrus.Info("Shutting down server...")

	serverConfig := a.configManager.GetEffectiveServerConfig()
	totalTimeout := time.Duration(serverConfig.GracefulShutdownTimeout) * time.Second

	// Reserve a share of the budget for background services
	httpShutdownTimeout := totalTimeout - 5*time.Second
	if httpShutdownTimeout <= 0 {
		httpShutdownTimeout = totalTimeout
	}
	httpShutdownCtx, cancelHTTPShutdown := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancelHTTPShutdown()

	httpShutdownStart := time.Now()
	if err := a.httpServer.Shutdown(httpShutdownCtx); err != nil {
		logrus.Debug("HTTP server graceful shutdown timed out, forcing remaining connections to close.")
		if closeErr := a.httpServer.Close(); closeErr != nil {
			logrus.Errorf("Error forcing HTTP server to close: %v", closeErr)
		}
	}
	logrus.Infof("HTTP server has been shut down. (took %v)", time.Since(httpShutdownStart))

	a.sampler.Stop(ctx)

	// Close the shared redis pool used by the stream and cache clients
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logrus.Errorf("Error closing redis client: %v", err)
		}
	}

	closeDBConnection(a.db, "Main database")
	logrus.Info("Server exited gracefully")
}

// closeDBConnection gracefully closes a GORM database connection with
// a bounded wait to avoid hanging on stuck connections.
func closeDBConnection(gormDB *gorm.DB, name string) {
	if gormDB == nil {
		return
	}

	if stmtManager, ok := gormDB.ConnPool.(*gorm.PreparedStmtDB); ok {
		stmtManager.Close()
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logrus.Errorf("Error getting sql.DB for %s: %v", name, err)
		return
	}

	stats := sqlDB.Stats()
	logrus.Debugf("[%s] Connection pool stats: Open=%d, InUse=%d, Idle=%d",
		name, stats.OpenConnections, stats.InUse, stats.Idle)

	sqlDB.SetMaxIdleConns(0)
	sqlDB.SetConnMaxIdleTime(0)
	sqlDB.SetConnMaxLifetime(0)

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			logrus.Errorf("[%s] Error closing connection: %v", name, err)
		} else {
			logrus.Debugf("[%s] Connection closed successfully.", name)
		}
	case <-time.After(1 * time.Second):
		logrus.Warnf("[%s] Connection close timed out after 1s, proceeding anyway", name)
	}
}

// Package config provides environment-driven configuration management.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"logstream/internal/types"
	"logstream/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Constants for configuration validation and defaults
const (
	minPort = 1
	maxPort = 65535

	defaultStreamName    = "logs:stream"
	defaultConsumerGroup = "log_workers"
	defaultStreamMaxLen  = 100000
)

// Config represents the application configuration assembled from the
// environment.
type Config struct {
	Server      types.ServerConfig
	Log         types.LogConfig
	CORS        types.CORSConfig
	Performance types.PerformanceConfig
	Database    types.DatabaseConfig
	Redis       types.RedisConfig
	Stream      types.StreamConfig
	Cache       types.CacheConfig
	Worker      types.WorkerConfig
	Timezone    string
}

// Manager implements the ConfigManager interface
type Manager struct {
	config *Config
}

// NewManager creates a new configuration manager and performs the
// initial load and validation.
func NewManager() (types.ConfigManager, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	manager := &Manager{}
	if err := manager.ReloadConfig(); err != nil {
		return nil, err
	}

	return manager, nil
}

// ReloadConfig reloads the configuration from environment variables
func (m *Manager) ReloadConfig() error {
	config := &Config{
		Server: types.ServerConfig{
			Port:                    utils.ParseInteger(os.Getenv("PORT"), 8000),
			Host:                    utils.GetEnvOrDefault("HOST", "0.0.0.0"),
			ReadTimeout:             utils.ParseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
			WriteTimeout:            utils.ParseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 60),
			IdleTimeout:             utils.ParseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
			GracefulShutdownTimeout: utils.ParseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 30),
			RequestTimeout:          utils.ParseInteger(os.Getenv("REQUEST_TIMEOUT"), 30),
			InstanceName:            utils.GetEnvOrDefault("INSTANCE_NAME", "logstream-api"),
		},
		Log: types.LogConfig{
			Level:      utils.GetEnvOrDefault("LOG_LEVEL", "info"),
			Format:     utils.GetEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: utils.ParseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
			FilePath:   utils.GetEnvOrDefault("LOG_FILE_PATH", "./logs/app.log"),
		},
		CORS: types.CORSConfig{
			Enabled:          utils.ParseBoolean(os.Getenv("ENABLE_CORS"), true),
			AllowedOrigins:   utils.ParseArray(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
			AllowedMethods:   utils.ParseArray(os.Getenv("ALLOWED_METHODS"), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   utils.ParseArray(os.Getenv("ALLOWED_HEADERS"), []string{"*"}),
			AllowCredentials: utils.ParseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
		},
		Performance: types.PerformanceConfig{
			MaxConcurrentRequests: utils.ParseInteger(os.Getenv("MAX_CONCURRENT_REQUESTS"), 1000),
		},
		Database: types.DatabaseConfig{
			DSN:             buildPostgresDSN(),
			MaxOpenConns:    utils.ParseInteger(os.Getenv("DB_MAX_OPEN_CONNS"), 15),
			MaxIdleConns:    utils.ParseInteger(os.Getenv("DB_MAX_IDLE_CONNS"), 10),
			ConnMaxLifetime: utils.ParseInteger(os.Getenv("DB_CONN_MAX_LIFETIME"), 3600),
		},
		Redis: types.RedisConfig{
			Addr:     buildRedisAddr(),
			PoolSize: utils.ParseInteger(os.Getenv("REDIS_POOL_SIZE"), 200),
		},
		Stream: types.StreamConfig{
			Name:          utils.GetEnvOrDefault("LOG_STREAM_NAME", defaultStreamName),
			ConsumerGroup: utils.GetEnvOrDefault("LOG_CONSUMER_GROUP", defaultConsumerGroup),
			MaxLen:        int64(utils.ParseInteger(os.Getenv("LOG_STREAM_MAX_LEN"), defaultStreamMaxLen)),
		},
		Cache: types.CacheConfig{
			LogsTTLSeconds:  utils.ParseInteger(os.Getenv("CACHE_LOGS_TTL_SECONDS"), 300),
			StatsTTLSeconds: utils.ParseInteger(os.Getenv("CACHE_STATS_TTL_SECONDS"), 60),
		},
		Worker: types.WorkerConfig{
			Name:           os.Getenv("WORKER_NAME"),
			BatchSize:      utils.ParseInteger(os.Getenv("WORKER_BATCH_SIZE"), 100),
			BlockMs:        utils.ParseInteger(os.Getenv("WORKER_BLOCK_MS"), 5000),
			BackoffSeconds: utils.ParseInteger(os.Getenv("WORKER_BACKOFF_SECONDS"), 5),
			ErrorThreshold: utils.ParseInteger(os.Getenv("WORKER_ERROR_THRESHOLD"), 10),
			StreamPoolSize: utils.ParseInteger(os.Getenv("WORKER_STREAM_POOL_SIZE"), 10),
		},
		Timezone: utils.GetEnvOrDefault("LOG_TIMEZONE", "Asia/Taipei"),
	}

	m.config = config
	return m.Validate()
}

// buildPostgresDSN assembles the database DSN from the POSTGRES_*
// variables. Defaults are development-only credentials.
func buildPostgresDSN() string {
	host := utils.GetEnvOrDefault("POSTGRES_HOST", "localhost")
	port := utils.GetEnvOrDefault("POSTGRES_PORT", "5432")
	user := utils.GetEnvOrDefault("POSTGRES_USER", "postgres")
	password := utils.GetEnvOrDefault("POSTGRES_PASSWORD", "postgres")
	dbname := utils.GetEnvOrDefault("POSTGRES_DB", "logsdb")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// buildRedisAddr assembles the redis address from REDIS_HOST/REDIS_PORT.
func buildRedisAddr() string {
	host := utils.GetEnvOrDefault("REDIS_HOST", "localhost")
	port := utils.GetEnvOrDefault("REDIS_PORT", "6379")
	return fmt.Sprintf("%s:%s", host, port)
}

// Validate checks the configuration for invalid values
func (m *Manager) Validate() error {
	var validationErrors []string

	if m.config.Server.Port < minPort || m.config.Server.Port > maxPort {
		validationErrors = append(validationErrors,
			fmt.Sprintf("port must be between %d and %d", minPort, maxPort))
	}

	if m.config.Performance.MaxConcurrentRequests < 1 {
		validationErrors = append(validationErrors, "max concurrent requests cannot be less than 1")
	}

	if m.config.Stream.MaxLen < 1 {
		validationErrors = append(validationErrors, "stream max length cannot be less than 1")
	}

	if m.config.Worker.BatchSize < 1 {
		validationErrors = append(validationErrors, "worker batch size cannot be less than 1")
	}

	if m.config.Worker.ErrorThreshold < 1 {
		validationErrors = append(validationErrors, "worker error threshold cannot be less than 1")
	}

	if _, err := time.LoadLocation(m.config.Timezone); err != nil {
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid LOG_TIMEZONE %q", m.config.Timezone))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// GetEffectiveServerConfig returns the server configuration
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.config.Server
}

// GetLogConfig returns the logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.config.Log
}

// GetCORSConfig returns the CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.config.CORS
}

// GetPerformanceConfig returns the performance configuration
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig {
	return m.config.Performance
}

// GetDatabaseConfig returns the database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.config.Database
}

// GetRedisConfig returns the redis configuration
func (m *Manager) GetRedisConfig() types.RedisConfig {
	return m.config.Redis
}

// GetStreamConfig returns the stream contract configuration
func (m *Manager) GetStreamConfig() types.StreamConfig {
	return m.config.Stream
}

// GetCacheConfig returns the cache TTL configuration
func (m *Manager) GetCacheConfig() types.CacheConfig {
	return m.config.Cache
}

// GetWorkerConfig returns the consumer tunables
func (m *Manager) GetWorkerConfig() types.WorkerConfig {
	return m.config.Worker
}

// GetInstanceName returns the instance identifier reported by /health
func (m *Manager) GetInstanceName() string {
	return m.config.Server.InstanceName
}

// GetTimezone returns the IANA zone used to stamp enqueued records
func (m *Manager) GetTimezone() string {
	return m.config.Timezone
}

// DisplayServerConfig logs the effective configuration at startup
func (m *Manager) DisplayServerConfig() {
	server := m.config.Server
	logrus.Info("")
	logrus.Info("======= Server Configuration =======")
	logrus.Infof("  Instance: %s", server.InstanceName)
	logrus.Infof("  Listen: %s:%d", server.Host, server.Port)
	logrus.Infof("  Stream: %s (group %s, maxlen ~%d)",
		m.config.Stream.Name, m.config.Stream.ConsumerGroup, m.config.Stream.MaxLen)
	logrus.Infof("  Redis: %s (pool %d)", m.config.Redis.Addr, m.config.Redis.PoolSize)
	logrus.Infof("  Database pool: open=%d idle=%d lifetime=%ds",
		m.config.Database.MaxOpenConns, m.config.Database.MaxIdleConns, m.config.Database.ConnMaxLifetime)
	logrus.Infof("  Timestamp zone: %s", m.config.Timezone)
	logrus.Infof("  Log level: %s", m.config.Log.Level)
	logrus.Info("====================================")
	logrus.Info("")
}

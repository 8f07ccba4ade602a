package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetEffectiveServerConfig() ServerConfig
	GetLogConfig() LogConfig
	GetCORSConfig() CORSConfig
	GetPerformanceConfig() PerformanceConfig
	GetDatabaseConfig() DatabaseConfig
	GetRedisConfig() RedisConfig
	GetStreamConfig() StreamConfig
	GetCacheConfig() CacheConfig
	GetWorkerConfig() WorkerConfig
	GetInstanceName() string
	GetTimezone() string
	Validate() error
	DisplayServerConfig()
	ReloadConfig() error
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
	RequestTimeout          int    `json:"request_timeout"`
	InstanceName            string `json:"instance_name"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// PerformanceConfig represents performance configuration
type PerformanceConfig struct {
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
}

// DatabaseConfig represents relational store configuration.
// DSN is assembled from the POSTGRES_* variables.
type DatabaseConfig struct {
	DSN             string `json:"dsn"`
	MaxOpenConns    int    `json:"max_open_conns"`
	MaxIdleConns    int    `json:"max_idle_conns"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

// RedisConfig represents the redis connection configuration shared by
// the stream and cache clients.
type RedisConfig struct {
	Addr     string `json:"addr"`
	PoolSize int    `json:"pool_size"`
}

// StreamConfig represents the durable stream contract.
type StreamConfig struct {
	Name          string `json:"name"`
	ConsumerGroup string `json:"consumer_group"`
	MaxLen        int64  `json:"max_len"`
}

// CacheConfig represents read-through cache TTLs.
type CacheConfig struct {
	LogsTTLSeconds  int `json:"logs_ttl_seconds"`
	StatsTTLSeconds int `json:"stats_ttl_seconds"`
}

// WorkerConfig represents consumer tunables. Defaults preserve the
// documented invariants: batch 100, block 5000ms, backoff 5s,
// error threshold 10.
type WorkerConfig struct {
	Name           string `json:"name"`
	BatchSize      int    `json:"batch_size"`
	BlockMs        int    `json:"block_ms"`
	BackoffSeconds int    `json:"backoff_seconds"`
	ErrorThreshold int    `json:"error_threshold"`
	StreamPoolSize int    `json:"stream_pool_size"`
}

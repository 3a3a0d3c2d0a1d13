package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Scorer      ScorerConfig     `mapstructure:"scorer"`
	Prediction  PredictionConfig `mapstructure:"prediction"`
	Cache       CacheConfig      `mapstructure:"cache"`
	History     HistoryConfig    `mapstructure:"history"`
	Archive     ArchiveConfig    `mapstructure:"archive"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// ScorerConfig configures the remote ML scorer.
type ScorerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RetryCooldown   time.Duration `mapstructure:"retry_cooldown"`
	BreakerRequests uint32        `mapstructure:"breaker_requests"`
	BreakerInterval time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// PredictionConfig tunes the prediction pipeline.
type PredictionConfig struct {
	StrictNormalization bool          `mapstructure:"strict_normalization"`
	OtherClassMax       float64       `mapstructure:"other_class_max"`
	PersistTimeout      time.Duration `mapstructure:"persist_timeout"`
	RandomSeed          int64         `mapstructure:"random_seed"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	RedisURL      string        `mapstructure:"redis_url"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
	MaxRetries    int           `mapstructure:"max_retries"`
	PoolSize      int           `mapstructure:"pool_size"`
	PoolTimeout   time.Duration `mapstructure:"pool_timeout"`
	MemoryEntries int           `mapstructure:"memory_entries"`
	MemoryTTL     time.Duration `mapstructure:"memory_ttl"`
}

// HistoryConfig selects the evaluation history store.
type HistoryConfig struct {
	Driver     string `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ArchiveConfig selects where history exports are written.
type ArchiveConfig struct {
	Provider         string `mapstructure:"provider"` // "file" or "azure"
	Directory        string `mapstructure:"directory"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

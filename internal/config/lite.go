// Package config provides configuration management for the prediction engine.
// This file contains the lightweight configuration for the standalone MCP server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the history database and exports

	// Remote scorer
	ScorerURL     string
	ScorerEnabled bool
	ScorerTimeout time.Duration

	// Reference info cache
	CacheMaxItems int
	CacheTTL      time.Duration

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".diabetes-prediction")

	return &LiteConfig{
		DataDir:       dataDir,
		ScorerURL:     "http://localhost:5000",
		ScorerEnabled: true,
		ScorerTimeout: 5 * time.Second,
		CacheMaxItems: 100,
		CacheTTL:      time.Hour,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("DIABETES_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("DIABETES_SCORER_URL"); v != "" {
		cfg.ScorerURL = v
	}
	if v := os.Getenv("DIABETES_SCORER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ScorerEnabled = b
		}
	}
	if v := os.Getenv("DIABETES_SCORER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ScorerTimeout = d
		}
	}

	if v := os.Getenv("DIABETES_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("DIABETES_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	if v := os.Getenv("DIABETES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DIABETES_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HistoryDBPath returns the path to the evaluation history SQLite database.
func (c *LiteConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}

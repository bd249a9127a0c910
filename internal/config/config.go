// Package config provides configuration management for QualGraph.
// It loads settings from environment variables with the QUALGRAPH_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Storage engine names accepted by QUALGRAPH_STORAGE_ENGINE.
const (
	EngineJSONFile = "jsonfile"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// Config holds all configuration settings for the QualGraph application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	Web      WebConfig
}

// ServerConfig contains HTTP server configuration (web viewer only; the
// MCP server speaks stdio).
type ServerConfig struct {
	Port int    // Server port (default: 6464)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	Engine         string // Storage engine: jsonfile, sqlite, postgres (default: jsonfile)
	DataPath       string // Path to data directory (default: ./data)
	PostgresDSN    string // DSN when Engine is postgres
	BreakerEnabled bool   // Wrap the store in a circuit breaker (default: false)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token for the web viewer
}

// WebConfig contains web viewer tuning.
type WebConfig struct {
	RateLimitPerSec float64 // Sustained request rate (default: 10)
	RateLimitBurst  int     // Burst size (default: 20)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the QUALGRAPH_ prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("QUALGRAPH_PORT", 6464),
			Host: getEnv("QUALGRAPH_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Engine:         getEnv("QUALGRAPH_STORAGE_ENGINE", EngineJSONFile),
			DataPath:       getEnv("QUALGRAPH_DATA_PATH", "./data"),
			PostgresDSN:    getEnv("QUALGRAPH_POSTGRES_DSN", ""),
			BreakerEnabled: getEnvBool("QUALGRAPH_STORAGE_BREAKER", false),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("QUALGRAPH_SECURITY_MODE", "development"),
			APIToken:     getEnv("QUALGRAPH_API_TOKEN", ""),
		},
		Web: WebConfig{
			RateLimitPerSec: getEnvFloat("QUALGRAPH_RATE_LIMIT_PER_SEC", 10.0),
			RateLimitBurst:  getEnvInt("QUALGRAPH_RATE_LIMIT_BURST", 20),
		},
	}

	switch cfg.Storage.Engine {
	case EngineJSONFile, EngineSQLite, EnginePostgres:
	default:
		return nil, fmt.Errorf("config: unknown storage engine %q", cfg.Storage.Engine)
	}
	if cfg.Storage.Engine == EnginePostgres && cfg.Storage.PostgresDSN == "" {
		return nil, fmt.Errorf("config: QUALGRAPH_POSTGRES_DSN is required for the postgres engine")
	}
	return cfg, nil
}

// GraphPath returns the knowledge graph store file path.
func (c *Config) GraphPath() string {
	return filepath.Join(c.Storage.DataPath, "graph.json")
}

// SessionPath returns the session-stage store file path.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Storage.DataPath, "sessions.json")
}

// SQLitePath returns the database path used by the sqlite engine.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Storage.DataPath, "qualgraph.db")
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value when unset or unparsable.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value when unset or unparsable.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" as true and "false", "0", "no"
// as false (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

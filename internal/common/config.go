// Package common provides shared utilities for pyvalue
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for pyvalue
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Compute     ComputeConfig  `toml:"compute"`
	FX          FXConfig       `toml:"fx"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend   string        `toml:"backend" validate:"oneof=badger surrealdb"` // "badger" (embedded) or "surrealdb"
	Badger    BadgerConfig  `toml:"badger"`
	SurrealDB SurrealConfig `toml:"surrealdb"`
}

// BadgerConfig holds the embedded store location.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// SurrealConfig holds SurrealDB connection details.
type SurrealConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
	SEC   SECConfig   `toml:"sec"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// SECConfig holds SEC EDGAR configuration. The SEC rejects requests without
// a descriptive User-Agent.
type SECConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SECConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// ComputeConfig controls the metric worker pool.
type ComputeConfig struct {
	Workers int `toml:"workers" validate:"gte=0"`
}

// FXConfig points at the directory of <PAIR>.csv rate series.
type FXConfig struct {
	Path      string `toml:"path"`
	CacheSize int    `toml:"cache_size"`
}

// ScheduleConfig holds the cron cycle settings. An empty Cron disables the scheduler.
type ScheduleConfig struct {
	Cron     string   `toml:"cron"`
	Provider string   `toml:"provider" validate:"omitempty,oneof=SEC EODHD"`
	Symbols  []string `toml:"symbols"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8580,
		},
		Storage: StorageConfig{
			Backend: "badger",
			Badger:  BadgerConfig{Path: "data/store"},
			SurrealDB: SurrealConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "pyvalue",
				Database:  "pyvalue",
				Username:  "root",
				Password:  "root",
			},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			SEC: SECConfig{
				BaseURL:   "https://data.sec.gov",
				UserAgent: "pyvalue/1.0 (contact@example.com)",
				RateLimit: 8,
				Timeout:   "30s",
			},
		},
		Compute: ComputeConfig{Workers: 4},
		FX: FXConfig{
			Path:      "data/fx",
			CacheSize: 64,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console"},
			FilePath:   "./logs/pyvalue.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PYVALUE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PYVALUE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PYVALUE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PYVALUE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("PYVALUE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("PYVALUE_DATA_PATH"); path != "" {
		config.Storage.Badger.Path = filepath.Join(path, "store")
		config.FX.Path = filepath.Join(path, "fx")
	}

	if addr := os.Getenv("PYVALUE_SURREAL_ADDRESS"); addr != "" {
		config.Storage.SurrealDB.Address = addr
	}

	if fx := os.Getenv("PYVALUE_FX_PATH"); fx != "" {
		config.FX.Path = fx
	}

	if w := os.Getenv("PYVALUE_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			config.Compute.Workers = n
		}
	}

	if ua := os.Getenv("SEC_USER_AGENT"); ua != "" {
		config.Clients.SEC.UserAgent = ua
	}
}

// Validate checks struct constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// WorkerCount returns the configured worker count, at least 1.
func (c *Config) WorkerCount() int {
	if c.Compute.Workers < 1 {
		return 1
	}
	return c.Compute.Workers
}

// ResolveAPIKey resolves an API key from environment or fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key": {"EODHD_API_KEY", "PYVALUE_EODHD_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Host      HostConfig
	Storage   StorageConfig
	Templates TemplateConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// HostConfig holds the issue-tracker platform connection.
type HostConfig struct {
	BaseURL string `envconfig:"TRACKER_BASE_URL" default:"http://localhost:8080"`
	Token   string `envconfig:"TRACKER_TOKEN" default:""`
}

// StorageConfig selects the property-store backend.
type StorageConfig struct {
	// Driver is "memory" or "file".
	Driver string `envconfig:"STORAGE_DRIVER" default:"file"`
	Dir    string `envconfig:"STORAGE_DIR" default:"./data"`
}

// TemplateConfig holds template engine configuration.
type TemplateConfig struct {
	PurgeIntervalDays int `envconfig:"PURGE_INTERVAL_DAYS" default:"7"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Host: HostConfig{
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Driver: "file",
			Dir:    "./data",
		},
		Templates: TemplateConfig{
			PurgeIntervalDays: 7,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

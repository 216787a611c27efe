package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment" validate:"omitempty,oneof=development production"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Fetch       FetchConfig   `toml:"fetch"`
	Tables      TablesConfig  `toml:"tables"`
	Cache       CacheConfig   `toml:"cache"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// FetchConfig controls the upstream page fetch
type FetchConfig struct {
	URL         string  `toml:"url" validate:"required,url"`   // Source page URL
	UserAgent   string  `toml:"user_agent"`                    // User agent sent with the request
	Timeout     string  `toml:"timeout"`                       // HTTP request timeout, e.g. "30s"
	RateLimit   float64 `toml:"rate_limit" validate:"gt=0"`    // Max outbound requests per second
	MaxBodySize int     `toml:"max_body_size" validate:"gt=0"` // Maximum response body size in bytes
}

// TablesConfig pins the positional table layout of the source page.
// The pipeline fails fast with a layout error when an index is out of range.
type TablesConfig struct {
	SectorIndex int `toml:"sector_index" validate:"min=0"` // Position of the sector/market-cap table
	ReturnIndex int `toml:"return_index" validate:"min=0"` // Position of the daily-return table
}

// CacheConfig controls snapshot memoization and scheduled refresh
type CacheConfig struct {
	TTL             string `toml:"ttl" validate:"required"` // Snapshot freshness window, e.g. "1h"
	RefreshEnabled  bool   `toml:"refresh_enabled"`         // Enable background cron refresh
	RefreshSchedule string `toml:"refresh_schedule"`        // Cron schedule with seconds field
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in mercatus.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Fetch: FetchConfig{
			URL:         "https://www.isyatirim.com.tr/tr-tr/analiz/hisse/Sayfalar/Temel-Degerler-Ve-Oranlar.aspx#page-1",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:     "30s",
			RateLimit:   1,                // The source is a single public page, one request per second is plenty
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Tables: TablesConfig{
			SectorIndex: 2, // Fundamentals table carrying Kod / Sektör / Piyasa Değeri (mn $)
			ReturnIndex: 6, // Returns table carrying Günlük Getiri (%)
		},
		Cache: CacheConfig{
			TTL:             "1h", // Matches the source page's intraday update cadence
			RefreshEnabled:  true,
			RefreshSchedule: "0 0 * * * *", // Top of every hour (cron format with seconds)
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: MERCATUS_ENV, fallback: GO_ENV)
	if env := os.Getenv("MERCATUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("MERCATUS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MERCATUS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Fetch configuration
	if url := os.Getenv("MERCATUS_FETCH_URL"); url != "" {
		config.Fetch.URL = url
	}
	if userAgent := os.Getenv("MERCATUS_FETCH_USER_AGENT"); userAgent != "" {
		config.Fetch.UserAgent = userAgent
	}
	if timeout := os.Getenv("MERCATUS_FETCH_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Fetch.Timeout = timeout
		}
	}
	if rateLimit := os.Getenv("MERCATUS_FETCH_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.ParseFloat(rateLimit, 64); err == nil && rl > 0 {
			config.Fetch.RateLimit = rl
		}
	}
	if maxBodySize := os.Getenv("MERCATUS_FETCH_MAX_BODY_SIZE"); maxBodySize != "" {
		if mbs, err := strconv.Atoi(maxBodySize); err == nil && mbs > 0 {
			config.Fetch.MaxBodySize = mbs
		}
	}

	// Table layout configuration
	if sectorIndex := os.Getenv("MERCATUS_TABLES_SECTOR_INDEX"); sectorIndex != "" {
		if si, err := strconv.Atoi(sectorIndex); err == nil && si >= 0 {
			config.Tables.SectorIndex = si
		}
	}
	if returnIndex := os.Getenv("MERCATUS_TABLES_RETURN_INDEX"); returnIndex != "" {
		if ri, err := strconv.Atoi(returnIndex); err == nil && ri >= 0 {
			config.Tables.ReturnIndex = ri
		}
	}

	// Cache configuration
	if ttl := os.Getenv("MERCATUS_CACHE_TTL"); ttl != "" {
		if _, err := time.ParseDuration(ttl); err == nil {
			config.Cache.TTL = ttl
		}
	}
	if refreshEnabled := os.Getenv("MERCATUS_CACHE_REFRESH_ENABLED"); refreshEnabled != "" {
		if re, err := strconv.ParseBool(refreshEnabled); err == nil {
			config.Cache.RefreshEnabled = re
		}
	}
	if refreshSchedule := os.Getenv("MERCATUS_CACHE_REFRESH_SCHEDULE"); refreshSchedule != "" {
		config.Cache.RefreshSchedule = refreshSchedule
	}

	// Storage configuration
	if badgerPath := os.Getenv("MERCATUS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("MERCATUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("MERCATUS_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("MERCATUS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration using go-playground/validator tags.
// A bad config is fatal at startup, before any component spins up.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid configuration: cache.ttl: %w", err)
	}
	if c.Fetch.Timeout != "" {
		if _, err := time.ParseDuration(c.Fetch.Timeout); err != nil {
			return fmt.Errorf("invalid configuration: fetch.timeout: %w", err)
		}
	}
	return nil
}

// TimeoutDuration returns the fetch timeout as a duration, defaulting to 30s
func (f FetchConfig) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(f.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// TTLDuration returns the cache TTL as a duration, defaulting to 1h
func (c CacheConfig) TTLDuration() time.Duration {
	if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Package config loads pipeline configuration from a YAML file with
// environment-variable overrides for credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable overriding the Postgres DSN from the config file, so
// credentials can stay out of version-controlled YAML.
const EnvPostgresDSN = "ARCHERY_SYNC_PG_DSN"

// SourceConfig describes where the events listing is fetched from.
type SourceConfig struct {
	BaseURLs     []string      `yaml:"base_urls"`     // tried in order until one serves the listing
	ListingPaths []string      `yaml:"listing_paths"` // paths tried under each base URL
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RetryConfig controls the fetcher's retry behaviour.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// CalendarConfig identifies the target calendar store.
type CalendarConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
	Table       string `yaml:"table"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9114"; empty disables the listener
}

// Config is the full pipeline configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Retry    RetryConfig    `yaml:"retry"`
	Calendar CalendarConfig `yaml:"calendar"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Timezone string         `yaml:"timezone"` // IANA zone for day boundaries; empty means UTC
	LogLevel string         `yaml:"log_level"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. A .env file in the working directory
// is loaded first if present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; system env vars still apply.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if dsn := os.Getenv(EnvPostgresDSN); dsn != "" {
		cfg.Calendar.PostgresDSN = dsn
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = "archery-sync/1.0 (github.com/rkeeler/archery-sync)"
	}
	if c.Source.Timeout <= 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if len(c.Source.ListingPaths) == 0 {
		c.Source.ListingPaths = []string{"/events"}
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialBackoff <= 0 {
		c.Retry.InitialBackoff = 500 * time.Millisecond
	}
	if c.Calendar.Table == "" {
		c.Calendar.Table = "calendar_entries"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if len(c.Source.BaseURLs) == 0 {
		return errors.New("config: source.base_urls must list at least one URL")
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC when none
// is set or the zone is unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

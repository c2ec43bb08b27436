package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the exchange simulator.
// Values come from an optional YAML file, overridden by environment
// variables, with sensible defaults for everything.
type Config struct {
	Server struct {
		Port               int `yaml:"port"`
		ReadTimeoutSec     int `yaml:"read_timeout_sec"`
		WriteTimeoutSec    int `yaml:"write_timeout_sec"`
		IdleTimeoutSec     int `yaml:"idle_timeout_sec"`
		ShutdownTimeoutSec int `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Market struct {
		FormationIntervalSec int     `yaml:"formation_interval_sec"`
		CollectionWindowSec  int     `yaml:"collection_window_sec"`
		PassDelaySec         int     `yaml:"pass_delay_sec"`
		ClosedBackoffSec     int     `yaml:"closed_backoff_sec"`
		IntakeRatePerSec     float64 `yaml:"intake_rate_per_sec"`
		IntakeBurst          int     `yaml:"intake_burst"`
	} `yaml:"market"`

	Logging struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// Load reads configuration from the YAML file at path (skipped when
// path is empty), applies environment overrides, and validates the
// result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeoutSec = 5
	cfg.Server.WriteTimeoutSec = 10
	cfg.Server.IdleTimeoutSec = 60
	cfg.Server.ShutdownTimeoutSec = 10
	cfg.Database.Path = "data/marketsim.db"
	cfg.Market.FormationIntervalSec = 30
	cfg.Market.CollectionWindowSec = 120
	cfg.Market.PassDelaySec = 5
	cfg.Market.ClosedBackoffSec = 30
	cfg.Market.IntakeRatePerSec = 50
	cfg.Market.IntakeBurst = 100
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 28
	return &cfg
}

// overrideWithEnv applies environment variable overrides for the
// values that commonly differ between deployments.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("MARKETSIM_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MARKETSIM_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("MARKETSIM_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MARKETSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MARKETSIM_COLLECTION_WINDOW_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MARKETSIM_COLLECTION_WINDOW_SEC: %w", err)
		}
		cfg.Market.CollectionWindowSec = sec
	}
	if v := os.Getenv("MARKETSIM_FORMATION_INTERVAL_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MARKETSIM_FORMATION_INTERVAL_SEC: %w", err)
		}
		cfg.Market.FormationIntervalSec = sec
	}
	return nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Market.FormationIntervalSec <= 0 {
		return fmt.Errorf("formation interval must be positive")
	}
	if c.Market.CollectionWindowSec <= 0 {
		return fmt.Errorf("collection window must be positive")
	}
	if c.Market.PassDelaySec <= 0 {
		return fmt.Errorf("pass delay must be positive")
	}
	if c.Market.ClosedBackoffSec <= 0 {
		return fmt.Errorf("closed backoff must be positive")
	}
	if c.Market.IntakeRatePerSec <= 0 {
		return fmt.Errorf("intake rate must be positive")
	}
	if c.Market.IntakeBurst <= 0 {
		return fmt.Errorf("intake burst must be positive")
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// Duration accessors.

func (c *Config) ReadTimeout() time.Duration     { return secs(c.Server.ReadTimeoutSec) }
func (c *Config) WriteTimeout() time.Duration    { return secs(c.Server.WriteTimeoutSec) }
func (c *Config) IdleTimeout() time.Duration     { return secs(c.Server.IdleTimeoutSec) }
func (c *Config) ShutdownTimeout() time.Duration { return secs(c.Server.ShutdownTimeoutSec) }

// FormationInterval is the period of the price-formation loop.
func (c *Config) FormationInterval() time.Duration { return secs(c.Market.FormationIntervalSec) }

// CollectionWindow is the per-stock order collection window of the
// clearing loop.
func (c *Config) CollectionWindow() time.Duration { return secs(c.Market.CollectionWindowSec) }

// PassDelay is the sleep between clearing passes.
func (c *Config) PassDelay() time.Duration { return secs(c.Market.PassDelaySec) }

// ClosedBackoff is the sleep after a closed-market cancellation sweep.
func (c *Config) ClosedBackoff() time.Duration { return secs(c.Market.ClosedBackoffSec) }

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

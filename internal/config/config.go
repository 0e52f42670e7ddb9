package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file omits values.
const (
	DefaultListen             = ":8080"
	DefaultSessionExpiryHours = 24
	DefaultAuditQueueSize     = 256
	DefaultAuditRetentionDays = 90
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SessionConfig holds session token settings.
type SessionConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// Expiry returns the configured session lifetime.
func (s SessionConfig) Expiry() time.Duration {
	hours := s.ExpiryHours
	if hours <= 0 {
		hours = DefaultSessionExpiryHours
	}
	return time.Duration(hours) * time.Hour
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// AuditConfig holds audit pipeline settings.
type AuditConfig struct {
	QueueSize     int `yaml:"queue_size"`
	RetentionDays int `yaml:"retention_days"`
}

// Config is the process configuration loaded at startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
	Audit    AuditConfig    `yaml:"audit"`
}

// Load reads the YAML config file at path, applies environment overrides
// and defaults. A missing file is not an error when the environment
// provides the required values.
func Load(path string) (Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil && !os.IsNotExist(errRead) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
		if errRead == nil {
			if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// Validate checks the settings required to serve requests.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return fmt.Errorf("config: session secret is required")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BACKOFFICE_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKOFFICE_DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKOFFICE_SESSION_SECRET")); v != "" {
		cfg.Session.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKOFFICE_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = DefaultListen
	}
	if cfg.Session.ExpiryHours <= 0 {
		cfg.Session.ExpiryHours = DefaultSessionExpiryHours
	}
	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = DefaultAuditQueueSize
	}
	if cfg.Audit.RetentionDays <= 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
}

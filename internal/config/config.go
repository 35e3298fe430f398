// Package config loads the YAML configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the root configuration
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Assistant AssistantConfig `yaml:"assistant"`
	CheckIns  CheckInConfig   `yaml:"checkins"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig selects where the session is persisted
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // empty uses the XDG data dir
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// AssistantConfig tunes the conversation pacing
type AssistantConfig struct {
	ReplyDelay     time.Duration `yaml:"reply_delay"`
	FollowUpDelay  time.Duration `yaml:"follow_up_delay"`
	ReminderOffset time.Duration `yaml:"reminder_offset"`
	TaskDue        time.Duration `yaml:"task_due"`
}

// CheckInConfig schedules the daily check-ins with cron expressions
type CheckInConfig struct {
	Enabled bool   `yaml:"enabled"`
	Morning string `yaml:"morning"`
	Evening string `yaml:"evening"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures zerolog
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "double:session",
			},
		},
		Assistant: AssistantConfig{
			ReplyDelay:     800 * time.Millisecond,
			FollowUpDelay:  1500 * time.Millisecond,
			ReminderOffset: time.Minute,
			TaskDue:        24 * time.Hour,
		},
		CheckIns: CheckInConfig{
			Enabled: true,
			Morning: "0 8 * * *",
			Evening: "0 20 * * *",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/double/config.yaml
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "double", "config.yaml")
}

// Load reads configuration from file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from DOUBLE_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DOUBLE_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("DOUBLE_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("DOUBLE_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("DOUBLE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DOUBLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOUBLE_REPLY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Bare numbers are milliseconds
			ms, convErr := strconv.Atoi(v)
			if convErr != nil {
				return fmt.Errorf("DOUBLE_REPLY_DELAY: %w", err)
			}
			d = time.Duration(ms) * time.Millisecond
		}
		c.Assistant.ReplyDelay = d
	}
	return nil
}

// Validate checks the configuration for values the program cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"assistant.reply_delay", c.Assistant.ReplyDelay},
		{"assistant.follow_up_delay", c.Assistant.FollowUpDelay},
		{"assistant.reminder_offset", c.Assistant.ReminderOffset},
		{"assistant.task_due", c.Assistant.TaskDue},
	}
	for _, d := range durations {
		if d.d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", d.name))
		}
	}

	if c.CheckIns.Enabled {
		for name, spec := range map[string]string{"checkins.morning": c.CheckIns.Morning, "checkins.evening": c.CheckIns.Evening} {
			if _, err := cron.ParseStandard(spec); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown logging format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

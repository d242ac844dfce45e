package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig describes the project-management backend.
type BackendConfig struct {
	// BaseURL is the root URL of the backend (e.g. https://pm.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// NotificationsPath is the endpoint that lists the user's notifications.
	NotificationsPath string `mapstructure:"notifications_path" yaml:"notifications_path"`

	// TimeoutSec bounds every non-poll request (row listings).
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// PollConfig controls the notification poller.
type PollConfig struct {
	IntervalSec     int `mapstructure:"interval_sec" yaml:"interval_sec"`
	FetchTimeoutSec int `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSec) * time.Second
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (p PollConfig) FetchTimeout() time.Duration {
	return time.Duration(p.FetchTimeoutSec) * time.Second
}

// Read-state drivers.
const (
	ReadStateFile   = "file"
	ReadStateSQLite = "sqlite"
	ReadStateRedis  = "redis"
	ReadStateMemory = "memory"
)

// ReadStateConfig selects where acknowledged notification IDs are kept.
type ReadStateConfig struct {
	// Driver is one of "file", "sqlite", "redis" or "memory".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the JSON file (file driver) or database file (sqlite
	// driver). Empty selects a per-driver file in DefaultStateDir.
	Path string `mapstructure:"path" yaml:"path"`

	// Key names the slot holding the ID set.
	Key string `mapstructure:"key" yaml:"key"`

	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// StorePath returns Path, or the driver's default file when Path is empty.
func (r ReadStateConfig) StorePath() string {
	if r.Path != "" {
		return r.Path
	}
	name := "read-notifications.json"
	if r.Driver == ReadStateSQLite {
		name = "read-state.db"
	}
	return filepath.Join(DefaultStateDir(), name)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	Poll      PollConfig      `mapstructure:"poll" yaml:"poll"`
	ReadState ReadStateConfig `mapstructure:"readstate" yaml:"readstate"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DefaultReadStateKey is the slot name used when none is configured.
const DefaultReadStateKey = "readNotifications"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pmwatch/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pmwatch", "config.yaml")
}

// DefaultStateDir returns ~/.local/state/pmwatch, where the read-state
// slot and the log file live by default.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "pmwatch")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	state := DefaultStateDir()
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8080",
			NotificationsPath: "/api/notifications",
			TimeoutSec:        10,
		},
		Poll: PollConfig{
			IntervalSec:     30,
			FetchTimeoutSec: 5,
		},
		ReadState: ReadStateConfig{
			Driver: ReadStateFile,
			Key:    DefaultReadStateKey,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(state, "pmwatch.log"),
		},
	}
}

// setDefaults mirrors defaultAppConfig so missing keys resolve to sensible
// values and environment overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.notifications_path", d.Backend.NotificationsPath)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("poll.interval_sec", d.Poll.IntervalSec)
	v.SetDefault("poll.fetch_timeout_sec", d.Poll.FetchTimeoutSec)
	v.SetDefault("readstate.driver", d.ReadState.Driver)
	v.SetDefault("readstate.path", d.ReadState.Path)
	v.SetDefault("readstate.key", d.ReadState.Key)
	v.SetDefault("readstate.redis_addr", "")
	v.SetDefault("readstate.redis_password", "")
	v.SetDefault("readstate.redis_db", 0)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus PMWATCH_* environment
// overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.base_url must not be empty")
	}
	if c.Backend.TimeoutSec <= 0 {
		return fmt.Errorf("backend.timeout_sec must be positive, got %d", c.Backend.TimeoutSec)
	}
	if c.Poll.IntervalSec <= 0 {
		return fmt.Errorf("poll.interval_sec must be positive, got %d", c.Poll.IntervalSec)
	}
	if c.Poll.FetchTimeoutSec <= 0 {
		return fmt.Errorf("poll.fetch_timeout_sec must be positive, got %d", c.Poll.FetchTimeoutSec)
	}
	switch c.ReadState.Driver {
	case ReadStateFile, ReadStateSQLite, ReadStateMemory:
	case ReadStateRedis:
		if c.ReadState.RedisAddr == "" {
			return errors.New("readstate.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown readstate.driver %q", c.ReadState.Driver)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("poll", cfg.Poll)
	v.Set("readstate", cfg.ReadState)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

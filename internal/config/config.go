// Package config provides configuration management for ignite.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sidneifjr/ignite-timer/internal/logging"
)

// Duration bounds a configured cycle policy may use.
const (
	MinCycleMinutes = 1
	MaxCycleMinutes = 60
)

// EnvPrefix is prepended to environment overrides, e.g. IGNITE_CYCLE_MIN_MINUTES.
const EnvPrefix = "IGNITE"

const defaultDataDir = "~/.ignite"

// Configuration errors.
var (
	ErrInvertedBounds  = errors.New("cycle.min_minutes must not exceed cycle.max_minutes")
	ErrTickTooShort    = errors.New("cycle.tick_interval must be at least one second")
	ErrInvalidLogLevel = errors.New("invalid logging.level")
)

// Config holds all configuration for the ignite application.
type Config struct {
	Cycle         CycleConfig        `mapstructure:"cycle"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// CycleConfig holds the duration policy and the countdown cadence.
type CycleConfig struct {
	MinMinutes   int           `mapstructure:"min_minutes"`
	MaxMinutes   int           `mapstructure:"max_minutes"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds log settings. An empty Dir means the data directory.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorRunning      string `mapstructure:"color_running"`
	ColorIdle         string `mapstructure:"color_idle"`
	ColorTitle        string `mapstructure:"color_title"`
	ColorTask         string `mapstructure:"color_task"`
	ColorHelp         string `mapstructure:"color_help"`
	ColorError        string `mapstructure:"color_error"`
	ColorFinished     string `mapstructure:"color_finished"`
	ColorInterrupted  string `mapstructure:"color_interrupted"`
	ProgressGradStart string `mapstructure:"progress_gradient_start"`
	ProgressGradEnd   string `mapstructure:"progress_gradient_end"`
	IconApp           string `mapstructure:"icon_app"`
	IconTask          string `mapstructure:"icon_task"`
	IconHistory       string `mapstructure:"icon_history"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorRunning:      "#00B37E",
		ColorIdle:         "#7C7C8A",
		ColorTitle:        "#7C7C8A",
		ColorTask:         "#C4C4CC",
		ColorHelp:         "#95A5A6",
		ColorError:        "#F75A68",
		ColorFinished:     "#00B37E",
		ColorInterrupted:  "#F75A68",
		ProgressGradStart: "#00875F",
		ProgressGradEnd:   "#00B37E",
		IconApp:           "🔥",
		IconTask:          "📋",
		IconHistory:       "📜",
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cycle: CycleConfig{
			MinMinutes:   5,
			MaxMinutes:   60,
			TickInterval: time.Second,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Theme: DefaultThemeConfig(),
	}
}

// Validate clamps the cycle bounds into [MinCycleMinutes, MaxCycleMinutes]
// and rejects settings that cannot be clamped.
func (c *Config) Validate() error {
	if c.Cycle.MinMinutes < MinCycleMinutes {
		c.Cycle.MinMinutes = MinCycleMinutes
	}
	if c.Cycle.MaxMinutes < MinCycleMinutes || c.Cycle.MaxMinutes > MaxCycleMinutes {
		c.Cycle.MaxMinutes = MaxCycleMinutes
	}
	if c.Cycle.MinMinutes > c.Cycle.MaxMinutes {
		return fmt.Errorf("%w: %d > %d", ErrInvertedBounds, c.Cycle.MinMinutes, c.Cycle.MaxMinutes)
	}
	if c.Cycle.TickInterval < time.Second {
		return fmt.Errorf("%w: %s", ErrTickTooShort, c.Cycle.TickInterval)
	}
	if !logging.IsValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}

// LogDir returns the directory log files are written to.
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return c.Storage.DataDir
}

// Load reads the configuration at path, or at GetConfigPath when path is
// empty. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig(), configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := ExpandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir
	if cfg.Logging.Dir != "" {
		if cfg.Logging.Dir, err = ExpandHome(cfg.Logging.Dir); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Save writes cfg to path, or to GetConfigPath when path is empty.
func Save(cfg *Config, path string) error {
	configPath := path
	if configPath == "" {
		p, err := GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)
	for key, value := range cfg.Settings() {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Settings returns the configuration as flat viper keys, in the form
// they are written to disk.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"cycle.min_minutes":             c.Cycle.MinMinutes,
		"cycle.max_minutes":             c.Cycle.MaxMinutes,
		"cycle.tick_interval":           c.Cycle.TickInterval.String(),
		"notifications.enabled":         c.Notifications.Enabled,
		"logging.level":                 c.Logging.Level,
		"logging.dir":                   c.Logging.Dir,
		"storage.data_dir":              c.Storage.DataDir,
		"theme.color_running":           c.Theme.ColorRunning,
		"theme.color_idle":              c.Theme.ColorIdle,
		"theme.color_title":             c.Theme.ColorTitle,
		"theme.color_task":              c.Theme.ColorTask,
		"theme.color_help":              c.Theme.ColorHelp,
		"theme.color_error":             c.Theme.ColorError,
		"theme.color_finished":          c.Theme.ColorFinished,
		"theme.color_interrupted":       c.Theme.ColorInterrupted,
		"theme.progress_gradient_start": c.Theme.ProgressGradStart,
		"theme.progress_gradient_end":   c.Theme.ProgressGradEnd,
		"theme.icon_app":                c.Theme.IconApp,
		"theme.icon_task":               c.Theme.IconTask,
		"theme.icon_history":            c.Theme.IconHistory,
	}
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ignite", "config.toml"), nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range DefaultConfig().Settings() {
		v.SetDefault(key, value)
	}
	return v
}

// ExpandHome resolves a leading ~ against the home directory. An empty
// path resolves to ~/.ignite.
func ExpandHome(path string) (string, error) {
	if path == "" || path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if path == "" {
			return filepath.Join(homeDir, ".ignite"), nil
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

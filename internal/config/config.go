// Package config loads stockroom settings from viper, the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STOCKROOM_BACKEND_URL.
const EnvPrefix = "STOCKROOM"

// Defaults.
const (
	DefaultBackendURL      = "http://localhost:5000/api"
	DefaultLoadTimeout     = 30 * time.Second
	DefaultActionTimeout   = 2 * time.Minute
	DefaultDatabasePath    = "~/.local/share/stockroom/stockroom.db"
	DefaultForecastDays    = 14
	DefaultRefreshInterval = 5 * time.Minute
)

// BackendConfig locates the optimization backend.
type BackendConfig struct {
	URL           string
	LoadTimeout   time.Duration
	ActionTimeout time.Duration
}

// LoggingConfig controls the global slog logger.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Config is the resolved application configuration.
type Config struct {
	Backend      BackendConfig
	Logging      LoggingConfig
	DatabasePath string
	ForecastDays int
	// RefreshInterval is how often the dashboard reloads on its own. Zero
	// disables automatic refresh.
	RefreshInterval time.Duration
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", DefaultBackendURL)
	v.SetDefault("backend.load_timeout", DefaultLoadTimeout)
	v.SetDefault("backend.action_timeout", DefaultActionTimeout)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("forecast.days", DefaultForecastDays)
	v.SetDefault("dashboard.refresh_interval", DefaultRefreshInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Backend: BackendConfig{
			URL:           strings.TrimSpace(v.GetString("backend.url")),
			LoadTimeout:   v.GetDuration("backend.load_timeout"),
			ActionTimeout: v.GetDuration("backend.action_timeout"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
		DatabasePath:    ExpandPath(v.GetString("database.path")),
		ForecastDays:    v.GetInt("forecast.days"),
		RefreshInterval: v.GetDuration("dashboard.refresh_interval"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("%w: backend.url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: backend.url %q must be an http(s) URL", common.ErrInvalidConfig, c.Backend.URL)
	}
	if c.Backend.LoadTimeout <= 0 {
		return fmt.Errorf("%w: backend.load_timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Backend.ActionTimeout < 0 {
		return fmt.Errorf("%w: backend.action_timeout cannot be negative", common.ErrInvalidConfig)
	}
	if c.ForecastDays <= 0 {
		return fmt.Errorf("%w: forecast.days must be positive", common.ErrInvalidConfig)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("%w: dashboard.refresh_interval cannot be negative", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// ConfigDir returns the directory searched for config.yaml.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "stockroom"), nil
}

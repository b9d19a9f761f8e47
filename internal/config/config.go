// Package config loads and validates the spice configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
)

// Remote backends.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config is the resolved application configuration.
type Config struct {
	UserID    string `validate:"required"`
	Location  string
	Cache     CacheConfig
	Remote    RemoteConfig
	Logging   LoggingConfig
	Reminders ReminderConfig
}

// CacheConfig locates the local cache database.
type CacheConfig struct {
	Path string `validate:"required"`
}

// RemoteConfig selects and configures the remote document store.
type RemoteConfig struct {
	Backend         string `validate:"oneof=memory sqlite firestore"`
	Path            string
	ProjectID       string
	DatabaseID      string
	CredentialsFile string
	Endpoint        string
	RetryAttempts   int `validate:"gte=1,lte=10"`
	RetryDelay      time.Duration
}

// LoggingConfig configures common.SetupLogger.
type LoggingConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	Format     string `validate:"oneof=console json"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
}

// ReminderConfig configures the reminder watcher.
type ReminderConfig struct {
	CheckInterval time.Duration `validate:"gte=1s"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("location", "Local")
	v.SetDefault("cache.path", "$HOME/.local/share/spice/cache.db")
	v.SetDefault("remote.backend", BackendSQLite)
	v.SetDefault("remote.path", "$HOME/.local/share/spice/remote.db")
	v.SetDefault("remote.database_id", "(default)")
	v.SetDefault("remote.retry_attempts", 3)
	v.SetDefault("remote.retry_delay", "500ms")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("reminders.check_interval", "1m")
}

// Load reads the configuration from v, expands paths and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		UserID:   v.GetString("user_id"),
		Location: v.GetString("location"),
		Cache: CacheConfig{
			Path: ExpandPath(v.GetString("cache.path")),
		},
		Remote: RemoteConfig{
			Backend:         v.GetString("remote.backend"),
			Path:            ExpandPath(v.GetString("remote.path")),
			ProjectID:       v.GetString("remote.project_id"),
			DatabaseID:      v.GetString("remote.database_id"),
			CredentialsFile: ExpandPath(v.GetString("remote.credentials_file")),
			Endpoint:        v.GetString("remote.endpoint"),
			RetryAttempts:   v.GetInt("remote.retry_attempts"),
			RetryDelay:      v.GetDuration("remote.retry_delay"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("logging.level"),
			Format:     v.GetString("logging.format"),
			File:       ExpandPath(v.GetString("logging.file")),
			MaxSizeMB:  v.GetInt("logging.max_size_mb"),
			MaxBackups: v.GetInt("logging.max_backups"),
		},
		Reminders: ReminderConfig{
			CheckInterval: v.GetDuration("reminders.check_interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings each backend requires.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	switch c.Remote.Backend {
	case BackendSQLite:
		if c.Remote.Path == "" {
			return fmt.Errorf("%w: remote.path is required for the sqlite backend", common.ErrMissingConfig)
		}
	case BackendFirestore:
		if c.Remote.ProjectID == "" {
			return fmt.Errorf("%w: remote.project_id is required for the firestore backend", common.ErrMissingConfig)
		}
	}

	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	return nil
}

// TimeLocation resolves Location. An empty value or "Local" is the system zone.
func (c Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %w", common.ErrInvalidConfig, c.Location, err)
	}
	return loc, nil
}

// LoggerOptions converts the logging section for common.SetupLogger.
func (c Config) LoggerOptions() common.LoggerOptions {
	return common.LoggerOptions{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}

// FirestoreConfig converts the remote section for docstore.NewFirestore.
func (c Config) FirestoreConfig() docstore.FirestoreConfig {
	return docstore.FirestoreConfig{
		ProjectID:       c.Remote.ProjectID,
		DatabaseID:      c.Remote.DatabaseID,
		CredentialsFile: c.Remote.CredentialsFile,
		Endpoint:        c.Remote.Endpoint,
		RetryAttempts:   c.Remote.RetryAttempts,
		RetryDelay:      c.Remote.RetryDelay,
	}
}

// ExpandPath replaces a leading ~ with the home directory and then expands
// $VAR references.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

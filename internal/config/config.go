// Package config loads showtrack configuration from a YAML file and
// SHOWTRACK_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/showtrack/internal/store"
)

const envPrefix = "SHOWTRACK"

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds remote provider settings
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`      // v3 key
	AccessToken  string        `mapstructure:"access_token"` // v4 read token, preferred
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Language     string        `mapstructure:"language"`
}

// StoreConfig selects the local database
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "bolt" or "sqlite"
	Dir    string `mapstructure:"dir"`
}

// CacheConfig holds freshness windows
type CacheConfig struct {
	ShowImagesMaxAge time.Duration `mapstructure:"show_images_max_age"`
	SeasonsMaxAge    time.Duration `mapstructure:"seasons_max_age"`
	StaleOnError     bool          `mapstructure:"stale_on_error"` // Serve stored values when a refresh fails
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GinMode         string        `mapstructure:"gin_mode"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      30 * time.Second,
			Language:     "en-US",
		},
		Store: StoreConfig{
			Driver: store.DriverBolt,
			Dir:    defaultDataPath(),
		},
		Cache: CacheConfig{
			ShowImagesMaxAge: 180 * 24 * time.Hour,
			SeasonsMaxAge:    7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			GinMode:         "release",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "showtrack.log")
}

// defaultDataPath returns the directory holding the database and log
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "showtrack")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "showtrack")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "showtrack")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "showtrack")
	}
}

// Load reads configuration from path, or from config.yaml in the default
// config directory and the working directory when path is empty.
// Environment variables override file values, e.g. SHOWTRACK_TMDB_API_KEY.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigPath())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv applies during Unmarshal even
// when the key is absent from the file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"tmdb.api_key", "tmdb.access_token", "tmdb.base_url", "tmdb.image_base_url",
		"tmdb.timeout", "tmdb.language",
		"store.driver", "store.dir",
		"cache.show_images_max_age", "cache.seasons_max_age", "cache.stale_on_error",
		"server.addr", "server.read_timeout", "server.write_timeout", "server.idle_timeout",
		"server.shutdown_timeout", "server.gin_mode",
		"logging.file", "logging.level",
	} {
		_ = v.BindEnv(key)
	}
}

// DefaultConfigFile returns the default config file path
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigPath(), "config.yaml")
}

// Save writes the configuration as YAML to path, or to DefaultConfigFile
// when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	v.Set("tmdb.access_token", cfg.TMDB.AccessToken)
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())
	v.Set("tmdb.language", cfg.TMDB.Language)

	v.Set("store.driver", cfg.Store.Driver)
	v.Set("store.dir", cfg.Store.Dir)

	v.Set("cache.show_images_max_age", cfg.Cache.ShowImagesMaxAge.String())
	v.Set("cache.seasons_max_age", cfg.Cache.SeasonsMaxAge.String())
	v.Set("cache.stale_on_error", cfg.Cache.StaleOnError)

	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.read_timeout", cfg.Server.ReadTimeout.String())
	v.Set("server.write_timeout", cfg.Server.WriteTimeout.String())
	v.Set("server.idle_timeout", cfg.Server.IdleTimeout.String())
	v.Set("server.shutdown_timeout", cfg.Server.ShutdownTimeout.String())
	v.Set("server.gin_mode", cfg.Server.GinMode)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case store.DriverBolt, store.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if c.Cache.ShowImagesMaxAge <= 0 {
		errs = append(errs, errors.New("cache.show_images_max_age must be positive"))
	}
	if c.Cache.SeasonsMaxAge <= 0 {
		errs = append(errs, errors.New("cache.seasons_max_age must be positive"))
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, errors.New("tmdb.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// IsConfigured returns true if TMDB credentials are set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.AccessToken != ""
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tmdb:
  api_key: abc
  timeout: 5s
store:
  driver: sqlite
  dir: /tmp/showtrack
cache:
  show_images_max_age: 720h
  stale_on_error: true
server:
  addr: ":9090"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.TMDB.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/showtrack", cfg.Store.Dir)
	assert.Equal(t, 720*time.Hour, cfg.Cache.ShowImagesMaxAge)
	assert.True(t, cfg.Cache.StaleOnError)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	// Untouched keys keep their defaults
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.SeasonsMaxAge)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.True(t, cfg.IsConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  api_key: from-file\n"), 0644))

	t.Setenv("SHOWTRACK_TMDB_API_KEY", "from-env")
	t.Setenv("SHOWTRACK_TMDB_ACCESS_TOKEN", "token")
	t.Setenv("SHOWTRACK_CACHE_SEASONS_MAX_AGE", "48h")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, "token", cfg.TMDB.AccessToken)
	assert.Equal(t, 48*time.Hour, cfg.Cache.SeasonsMaxAge)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.TMDB.AccessToken = "token"
	cfg.Cache.ShowImagesMaxAge = 90 * 24 * time.Hour

	require.NoError(t, Save(cfg, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_EmptyPathUsesDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APPDATA", home)

	cfg := DefaultConfig()
	cfg.TMDB.APIKey = "key"
	require.NoError(t, Save(cfg, ""))

	loaded, err := Load(DefaultConfigFile())
	require.NoError(t, err)
	assert.Equal(t, "key", loaded.TMDB.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "unknown driver"},
		{"zero image age", func(c *Config) { c.Cache.ShowImagesMaxAge = 0 }, "show_images_max_age"},
		{"negative season age", func(c *Config) { c.Cache.SeasonsMaxAge = -time.Hour }, "seasons_max_age"},
		{"zero timeout", func(c *Config) { c.TMDB.Timeout = 0 }, "tmdb.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.IsConfigured())
	cfg.TMDB.AccessToken = "t"
	assert.True(t, cfg.IsConfigured())
}

package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/showtrack/internal/config"
)

func TestSetup_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "showtrack.log")

	logger, closer, err := Setup(config.LoggingConfig{File: path, Level: "warn"})
	require.NoError(t, err)

	logger = For(logger, "show_images")
	logger.Info("dropped")
	logger.Warn("kept", "showID", 42, "maxAge", 180*24*time.Hour)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(42), entry["showID"])
	assert.Equal(t, "show_images", entry["component"])
	assert.Equal(t, "4320h0m0s", entry["maxAge"])
	assert.Equal(t, float64(os.Getpid()), entry["pid"])
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/logs/a.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "a.log"), got)

	got, err = expandHome("/var/log/a.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/a.log", got)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"debug+2": slog.LevelDebug + 2,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNullLogger(t *testing.T) {
	logger := NullLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

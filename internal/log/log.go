// Package log builds the application's slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/showtrack/internal/config"
)

// Setup opens the configured log file and returns a JSON logger writing to
// it. Every record carries the process ID so interleaved CLI and serve runs
// sharing one file can be told apart. The closer releases the file.
func Setup(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	logPath, err := expandHome(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: readableDurations,
	})
	return slog.New(handler).With("pid", os.Getpid()), logFile, nil
}

// For scopes a logger to one component, e.g. "tmdb" or "show_images".
func For(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}

// readableDurations writes durations such as freshness windows as "4320h0m0s"
// instead of nanoseconds.
func readableDurations(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.String(a.Key, a.Value.Duration().String())
	}
	return a
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ParseLevel accepts slog level names in any case, offsets such as
// "debug+2", and "warning". Anything else is INFO.
func ParseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NullLogger returns a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/commands"
	"github.com/mmcdole/showtrack/internal/config"
	"github.com/mmcdole/showtrack/internal/log"
)

// Version is set at build time via -ldflags
var Version = "dev"

func version() string {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				return mv
			}
		}
	}
	return Version
}

func main() {
	var (
		flags     = &commands.Flags{}
		showtrack = &app.App{}
		logCloser io.Closer
	)

	root := &cli.Command{
		Name:    "showtrack",
		Usage:   "Track TV shows with a local TMDB cache",
		Version: version(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SHOWTRACK_CONFIG"),
				Value:       config.DefaultConfigFile(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "driver",
				Usage:       "store driver (bolt, sqlite)",
				Destination: &flags.Driver,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory holding the local database",
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := flags.LoadConfig(c.Args().First())
			if err != nil {
				return ctx, err
			}

			logger, closer, err := log.Setup(cfg.Logging)
			if err != nil {
				// Fall back to null logger if file logging fails
				logger = log.NullLogger()
			}
			logCloser = closer
			slog.SetDefault(logger)
			logger.Info("starting showtrack", "version", version(), "command", c.Args().First())

			a, err := app.New(cfg, logger)
			if err != nil {
				return ctx, err
			}
			// Commands already hold a pointer to the App
			*showtrack = *a
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := showtrack.Close(); err != nil {
				slog.Error("failed to close store", "error", err)
			}
			if logCloser != nil {
				_ = logCloser.Close()
			}
			return nil
		},
	}

	root = commands.NewShowsCmd(flags, showtrack).Register(root)
	root = commands.NewCacheCmd(flags, showtrack).Register(root)
	root = commands.NewServeCmd(flags, showtrack).Register(root)
	root = commands.NewInitCmd(flags, showtrack).Register(root)

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

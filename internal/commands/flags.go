// Package commands implements the showtrack command line.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/config"
	"github.com/mmcdole/showtrack/internal/printer"
)

// Flags holds global flag values.
type Flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Driver     string
	DataDir    string
}

// LoadConfig reads the config file and applies flag overrides. A missing
// file is only tolerated at the default location, or for init, which is
// about to create it.
func (f *Flags) LoadConfig(command string) (*config.Config, error) {
	path := f.ConfigPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path != config.DefaultConfigFile() && command != "init" {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Logging.File = f.LogFile
	}
	if f.Driver != "" {
		cfg.Store.Driver = f.Driver
	}
	if f.DataDir != "" {
		cfg.Store.Dir = f.DataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var errNotConfigured = errors.New("TMDB credentials are not configured. Run 'showtrack init' or set SHOWTRACK_TMDB_ACCESS_TOKEN")

// requireTMDB fails early for commands that must reach TMDB.
func requireTMDB(a *app.App) error {
	if !a.Config.IsConfigured() {
		return errNotConfigured
	}
	return nil
}

func newPrinter(c *cli.Command) *printer.Printer {
	root := c.Root()
	return printer.New(root.Writer, root.ErrWriter)
}

// showIDArg parses the first positional argument as an internal show ID.
func showIDArg(c *cli.Command) (int64, error) {
	if c.Args().Len() < 1 {
		return 0, errors.New("show id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid show id %q", c.Args().First())
	}
	return id, nil
}

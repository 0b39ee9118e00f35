package commands

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/config"
	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/tmdb"
)

// InitCmd prompts for TMDB credentials, verifies them and writes the config
// file.
type InitCmd struct {
	flags *Flags
	app   *app.App
	in    io.Reader
}

func NewInitCmd(flags *Flags, app *app.App) *InitCmd {
	return &InitCmd{flags: flags, app: app, in: os.Stdin}
}

func (cmd *InitCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "init",
		Usage: "Configure TMDB credentials",
		Description: `Asks for a TMDB API read access token (or v3 API key), checks it against
TMDB and saves it to the config file.`,
		Action: cmd.run,
	})
	return root
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	reader := bufio.NewReader(cmd.in)
	p := newPrinter(c)

	_, _ = fmt.Fprintln(out, "Welcome to showtrack!")
	_, _ = fmt.Fprintln(out)

	for {
		_, _ = fmt.Fprint(out, "TMDB read access token or API key: ")
		input, err := reader.ReadString('\n')
		credential := strings.TrimSpace(input)
		if err != nil && credential == "" {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if credential == "" {
			_, _ = fmt.Fprintln(out, "Credential cannot be empty. Please try again.")
			continue
		}

		cfg := *cmd.app.Config
		// v4 read tokens are JWTs; v3 keys are 32 hex characters
		if strings.Count(credential, ".") == 2 {
			cfg.TMDB.AccessToken, cfg.TMDB.APIKey = credential, ""
		} else {
			cfg.TMDB.APIKey, cfg.TMDB.AccessToken = credential, ""
		}

		if err := verify(ctx, cfg); err != nil {
			_, _ = fmt.Fprintf(out, "\n✗ Could not verify credential: %v\n\n", err)
			if errors.Is(err, domain.ErrAuthFailed) {
				continue
			}
			return err
		}

		if err := config.Save(&cfg, cmd.flags.ConfigPath); err != nil {
			return err
		}
		*cmd.app.Config = cfg
		p.Success("✓ Saved configuration to %s", cmp.Or(cmd.flags.ConfigPath, config.DefaultConfigFile()))
		return nil
	}
}

// verify makes one cheap authenticated request with the candidate config.
func verify(ctx context.Context, cfg config.Config) error {
	client := tmdb.NewClient(tmdb.Config{
		BaseURL:     cfg.TMDB.BaseURL,
		APIKey:      cfg.TMDB.APIKey,
		AccessToken: cfg.TMDB.AccessToken,
		Timeout:     cfg.TMDB.Timeout,
	}, nil)
	_, err := client.PopularShows(ctx, 1)
	return err
}

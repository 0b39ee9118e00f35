package commands

import (
	"context"
	"errors"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/api"
	"github.com/mmcdole/showtrack/internal/app"
)

type ServeCmd struct {
	flags *Flags
	app   *app.App

	// flags
	addr string
}

func NewServeCmd(flags *Flags, app *app.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

func (cmd *ServeCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "serve",
		Usage: "Serve the library and caches over HTTP",
		Description: `Starts the HTTP API and blocks until SIGINT or SIGTERM. In-flight requests
are given server.shutdown_timeout to finish. Prometheus metrics are served at /metrics.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Sources:     cli.EnvVars("SHOWTRACK_SERVER_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	if err := requireTMDB(cmd.app); err != nil {
		return err
	}
	if cmd.addr != "" {
		cmd.app.Config.Server.Addr = cmd.addr
	}

	err := api.NewServer(cmd.app).ListenAndServe(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/domain"
)

// ShowsCmd registers the commands that manage tracked shows.
type ShowsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	remote bool
	page   int
}

func NewShowsCmd(flags *Flags, app *app.App) *ShowsCmd {
	return &ShowsCmd{flags: flags, app: app}
}

func (cmd *ShowsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands,
		&cli.Command{
			Name:      "add",
			Usage:     "Track a show by TMDB ID or title",
			ArgsUsage: "<tmdb-id|title>",
			Description: `Fetches the show from TMDB and adds it to the library. A numeric argument
is treated as a TMDB ID; anything else is searched and the closest title wins.`,
			Action: cmd.add,
		},
		&cli.Command{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "Stop tracking a show and drop its cached data",
			ArgsUsage: "<show-id>",
			Action:    cmd.remove,
		},
		&cli.Command{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "List tracked shows",
			Action:  cmd.list,
		},
		&cli.Command{
			Name:      "search",
			Usage:     "Search tracked shows, or TMDB with --remote",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "remote",
					Aliases:     []string{"r"},
					Usage:       "search TMDB instead of the local library",
					Destination: &cmd.remote,
				},
			},
			Action: cmd.search,
		},
		&cli.Command{
			Name:  "popular",
			Usage: "List popular shows on TMDB",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:        "page",
					Usage:       "result page",
					Value:       1,
					Destination: &cmd.page,
				},
			},
			Action: cmd.popular,
		},
	)
	return root
}

func (cmd *ShowsCmd) add(ctx context.Context, c *cli.Command) error {
	if err := requireTMDB(cmd.app); err != nil {
		return err
	}
	arg := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if arg == "" {
		return errors.New("tmdb id or title is required")
	}

	p := newPrinter(c)
	var show domain.Show
	err := p.Spin(ctx, "Fetching from TMDB", func(ctx context.Context) error {
		var err error
		if tmdbID, perr := strconv.ParseInt(arg, 10, 64); perr == nil && tmdbID > 0 {
			show, err = cmd.app.Library.AddShow(ctx, tmdbID)
		} else {
			show, err = cmd.app.Library.AddShowByTitle(ctx, arg)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("add show: %w", err)
	}

	p.Success("Tracking %s (id %d)", show.Title, show.ID)
	return nil
}

func (cmd *ShowsCmd) remove(ctx context.Context, c *cli.Command) error {
	id, err := showIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.app.Library.RemoveShow(ctx, id); err != nil {
		return fmt.Errorf("remove show: %w", err)
	}
	newPrinter(c).Success("Removed show %d", id)
	return nil
}

func (cmd *ShowsCmd) list(ctx context.Context, c *cli.Command) error {
	shows, err := cmd.app.Queries.ListShows(ctx)
	if err != nil {
		return fmt.Errorf("list shows: %w", err)
	}
	newPrinter(c).Shows(shows)
	return nil
}

func (cmd *ShowsCmd) search(ctx context.Context, c *cli.Command) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("query is required")
	}
	p := newPrinter(c)

	if !cmd.remote {
		results, err := cmd.app.Queries.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		p.SearchResults(results)
		return nil
	}

	if err := requireTMDB(cmd.app); err != nil {
		return err
	}
	var shows []domain.Show
	err := p.Spin(ctx, "Searching TMDB", func(ctx context.Context) error {
		var err error
		shows, err = cmd.app.Library.SearchRemote(ctx, query, 1)
		return err
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	p.Shows(shows)
	return nil
}

func (cmd *ShowsCmd) popular(ctx context.Context, c *cli.Command) error {
	if err := requireTMDB(cmd.app); err != nil {
		return err
	}
	p := newPrinter(c)
	var shows []domain.Show
	err := p.Spin(ctx, "Fetching popular shows", func(ctx context.Context) error {
		var err error
		shows, err = cmd.app.Library.Popular(ctx, max(cmd.page, 1))
		return err
	})
	if err != nil {
		return fmt.Errorf("popular: %w", err)
	}
	p.Shows(shows)
	return nil
}

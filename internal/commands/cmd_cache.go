package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/seasons"
)

// CacheCmd registers the commands that read and manage cached values.
type CacheCmd struct {
	flags *Flags
	app   *app.App

	// flags
	refresh  bool
	size     string
	force    bool
	episodes bool
	showID   int64
}

func NewCacheCmd(flags *Flags, app *app.App) *CacheCmd {
	return &CacheCmd{flags: flags, app: app}
}

func (cmd *CacheCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands,
		&cli.Command{
			Name:      "images",
			Usage:     "Show artwork for a tracked show",
			ArgsUsage: "<show-id>",
			Description: `Images are served from the local cache and refetched from TMDB once they
are older than cache.show_images_max_age (180 days by default).`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "refresh",
					Usage:       "fetch from TMDB even if the cache is fresh",
					Destination: &cmd.refresh,
				},
				&cli.StringFlag{
					Name:        "size",
					Usage:       "TMDB image size for URLs (w342, w780, original, ...)",
					Value:       "original",
					Destination: &cmd.size,
				},
			},
			Action: cmd.images,
		},
		&cli.Command{
			Name:      "seasons",
			Usage:     "Show seasons for a tracked show",
			ArgsUsage: "<show-id>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "force",
					Usage:       "fetch from TMDB even if the cache is fresh",
					Destination: &cmd.force,
				},
				&cli.BoolFlag{
					Name:        "episodes",
					Aliases:     []string{"e"},
					Usage:       "list every episode",
					Destination: &cmd.episodes,
				},
			},
			Action: cmd.seasons,
		},
		&cli.Command{
			Name:  "cache",
			Usage: "Manage cached data",
			Commands: []*cli.Command{
				{
					Name:  "clear",
					Usage: "Drop cached images and seasons so the next read refetches",
					Flags: []cli.Flag{
						&cli.Int64Flag{
							Name:        "show",
							Usage:       "only clear this show",
							Destination: &cmd.showID,
						},
					},
					Action: cmd.clear,
				},
			},
		},
	)
	return root
}

func (cmd *CacheCmd) images(ctx context.Context, c *cli.Command) error {
	id, err := showIDArg(c)
	if err != nil {
		return err
	}
	if err := requireTMDB(cmd.app); err != nil {
		return err
	}

	p := newPrinter(c)
	var images domain.ShowImages
	err = p.Spin(ctx, "Loading images", func(ctx context.Context) error {
		var err error
		if cmd.refresh {
			images, err = cmd.app.ShowImages.Refresh(ctx, id)
		} else {
			images, err = cmd.app.ShowImages.Get(ctx, id)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("images: %w", err)
	}

	p.Images(images, func(path string) string {
		return cmd.app.TMDB.ImageURL(path, cmd.size)
	})
	return nil
}

func (cmd *CacheCmd) seasons(ctx context.Context, c *cli.Command) error {
	id, err := showIDArg(c)
	if err != nil {
		return err
	}
	if err := requireTMDB(cmd.app); err != nil {
		return err
	}

	p := newPrinter(c)
	var result domain.ShowSeasons
	err = p.Spin(ctx, "Loading seasons", func(ctx context.Context) error {
		var err error
		result, err = cmd.app.FetchSeasons.Run(ctx, seasons.Params{ShowID: id, ForceLoad: cmd.force})
		return err
	})
	if err != nil {
		return fmt.Errorf("seasons: %w", err)
	}
	p.Seasons(result, cmd.episodes)
	return nil
}

func (cmd *CacheCmd) clear(ctx context.Context, c *cli.Command) error {
	p := newPrinter(c)

	if cmd.showID > 0 {
		errs := []error{
			cmd.app.ShowImages.Clear(ctx, cmd.showID),
			cmd.app.ShowSeasons.Clear(ctx, cmd.showID),
		}
		for _, req := range domain.Requests() {
			errs = append(errs, cmd.app.Requests.Invalidate(ctx, req, cmd.showID))
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		p.Success("Cleared cache for show %d", cmd.showID)
		return nil
	}

	errs := []error{
		cmd.app.ShowImages.ClearAll(ctx),
		cmd.app.ShowSeasons.ClearAll(ctx),
	}
	for _, req := range []domain.Request{domain.RequestShowImages, domain.RequestShowSeasons} {
		errs = append(errs, cmd.app.Requests.InvalidateAll(ctx, req))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	p.Success("Cleared all cached images and seasons")
	return nil
}

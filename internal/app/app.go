// Package app wires every collaborator once and hands the result to the CLI
// and HTTP layers.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/showtrack/internal/config"
	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/library"
	applog "github.com/mmcdole/showtrack/internal/log"
	"github.com/mmcdole/showtrack/internal/seasons"
	"github.com/mmcdole/showtrack/internal/showimages"
	"github.com/mmcdole/showtrack/internal/store"
	"github.com/mmcdole/showtrack/internal/tmdb"
)

// App is the application container. Dependencies are built once in New and
// never replaced.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB       store.Backend
	Shows    *store.ShowStore
	Requests *store.LastRequestStore

	TMDB *tmdb.Client

	ShowImages   *showimages.Store
	ShowSeasons  *seasons.Store
	FetchSeasons *seasons.FetchShowSeasons

	Library *library.Service
	Queries *library.Queries
}

// New opens the configured store and builds the caches and services on top
// of it.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := store.Open(cfg.Store.Driver, cfg.Store.Dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("opened store", "driver", cfg.Store.Driver, "dir", cfg.Store.Dir)

	client := tmdb.NewClient(tmdb.Config{
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		APIKey:       cfg.TMDB.APIKey,
		AccessToken:  cfg.TMDB.AccessToken,
		Language:     cfg.TMDB.Language,
		Timeout:      cfg.TMDB.Timeout,
	}, applog.For(logger, "tmdb"))

	shows := store.NewShowStore(db)
	requests := store.NewLastRequestStore(db)

	images := showimages.NewStore(shows, client, store.NewImageStore(db),
		requests.For(domain.RequestShowImages),
		showimages.Config{MaxAge: cfg.Cache.ShowImagesMaxAge, StaleOnError: cfg.Cache.StaleOnError},
		applog.For(logger, "show_images"),
	)
	showSeasons := seasons.NewStore(shows, client, store.NewSeasonStore(db),
		requests.For(domain.RequestShowSeasons),
		seasons.Config{MaxAge: cfg.Cache.SeasonsMaxAge, StaleOnError: cfg.Cache.StaleOnError},
		applog.For(logger, "show_seasons"),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Shows:        shows,
		Requests:     requests,
		TMDB:         client,
		ShowImages:   images,
		ShowSeasons:  showSeasons,
		FetchSeasons: seasons.NewFetchShowSeasons(showSeasons),
		Library:      library.NewService(client, shows, requests, applog.For(logger, "library"), images, showSeasons),
		Queries:      library.NewQueries(shows),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

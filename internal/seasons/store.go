// Package seasons caches a show's season and episode listings.
package seasons

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/showtrack/internal/cache"
	"github.com/mmcdole/showtrack/internal/domain"
)

const (
	DefaultMaxAge = 7 * 24 * time.Hour

	// maxConcurrentSeasons bounds parallel season requests per show
	maxConcurrentSeasons = 4
)

type Config struct {
	MaxAge       time.Duration
	StaleOnError bool
}

// Store serves season listings by internal show ID.
type Store struct {
	cache *cache.Cache[int64, domain.ShowSeasons]
}

func NewStore(
	shows domain.ShowLookup,
	remote domain.SeasonRepository,
	sot cache.SourceOfTruth[int64, domain.ShowSeasons],
	freshness cache.Freshness[int64],
	cfg Config,
	logger *slog.Logger,
) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	f := &fetcher{shows: shows, remote: remote, logger: logger}
	return &Store{
		cache: cache.New[int64, domain.ShowSeasons](f, sot, freshness,
			cache.WithName("show_seasons"),
			cache.WithMaxAge(cfg.MaxAge),
			cache.WithStaleFallback(cfg.StaleOnError),
			cache.WithLogger(logger),
		),
	}
}

func (s *Store) Get(ctx context.Context, showID int64) (domain.ShowSeasons, error) {
	seasons, err := s.cache.Get(ctx, showID)
	if err != nil {
		return domain.ShowSeasons{}, err
	}
	return normalize(showID, seasons), nil
}

func (s *Store) Refresh(ctx context.Context, showID int64) (domain.ShowSeasons, error) {
	seasons, err := s.cache.Fresh(ctx, showID)
	if err != nil {
		return domain.ShowSeasons{}, err
	}
	return normalize(showID, seasons), nil
}

func (s *Store) Cached(ctx context.Context, showID int64) (domain.ShowSeasons, bool, error) {
	seasons, ok, err := s.cache.Cached(ctx, showID)
	if err != nil || !ok {
		return domain.ShowSeasons{ShowID: showID, Seasons: []domain.Season{}}, ok, err
	}
	return normalize(showID, seasons), true, nil
}

func (s *Store) Clear(ctx context.Context, showID int64) error {
	return s.cache.Clear(ctx, showID)
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.cache.ClearAll(ctx)
}

func normalize(showID int64, seasons domain.ShowSeasons) domain.ShowSeasons {
	seasons.ShowID = showID
	if seasons.Seasons == nil {
		seasons.Seasons = []domain.Season{}
	}
	return seasons
}

type fetcher struct {
	shows  domain.ShowLookup
	remote domain.SeasonRepository
	logger *slog.Logger
}

// Fetch loads the show's season list, then each season's episodes. Shows
// without a provider mapping store an empty list that is never stamped fresh.
func (f *fetcher) Fetch(ctx context.Context, showID int64) (domain.ShowSeasons, error) {
	empty := domain.ShowSeasons{ShowID: showID, Seasons: []domain.Season{}}

	show, err := f.shows.Get(ctx, showID)
	if errors.Is(err, domain.ErrShowNotFound) {
		return empty, cache.ErrNoOrigin
	}
	if err != nil {
		return domain.ShowSeasons{}, fmt.Errorf("resolve show %d: %w", showID, err)
	}
	if !show.HasExternalID() {
		f.logger.Debug("show has no tmdb id, storing empty seasons", "showID", showID)
		return empty, cache.ErrNoOrigin
	}

	remote, err := f.remote.GetShow(ctx, show.TmdbID)
	if err != nil {
		return domain.ShowSeasons{}, err
	}

	seasons := make([]domain.Season, len(remote.Seasons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSeasons)
	for i, summary := range remote.Seasons {
		g.Go(func() error {
			season, err := f.remote.GetSeason(gctx, show.TmdbID, summary.Number)
			if errors.Is(err, domain.ErrRemoteNotFound) {
				// Listed but unpublished; keep the summary without episodes
				season = &summary
				err = nil
			}
			if err != nil {
				return fmt.Errorf("season %d: %w", summary.Number, err)
			}
			merged := *season
			merged.ShowID = showID
			if merged.PosterPath == "" {
				merged.PosterPath = summary.PosterPath
			}
			if merged.Episodes == nil {
				merged.Episodes = []domain.Episode{}
			}
			merged.EpisodeCount = max(merged.EpisodeCount, len(merged.Episodes))
			seasons[i] = merged
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ShowSeasons{}, err
	}

	sort.SliceStable(seasons, func(i, j int) bool {
		return seasons[i].Number < seasons[j].Number
	})

	f.logger.Debug("fetched seasons", "showID", showID, "count", len(seasons))
	return domain.ShowSeasons{ShowID: showID, Seasons: seasons}, nil
}

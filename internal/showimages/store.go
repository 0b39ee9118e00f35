// Package showimages serves a show's artwork through a read-through cache
// backed by the local image store and refreshed from TMDB.
package showimages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/showtrack/internal/cache"
	"github.com/mmcdole/showtrack/internal/domain"
)

// DefaultMaxAge is how long fetched images stay valid.
const DefaultMaxAge = 180 * 24 * time.Hour

// Store serves show images by internal show ID.
type Store struct {
	cache *cache.Cache[int64, domain.ShowImages]
}

// Config controls the freshness policy.
type Config struct {
	MaxAge       time.Duration
	StaleOnError bool
}

// NewStore composes the images cache: a fetcher that resolves the show's
// TMDB ID before calling the provider, the image store as source of truth,
// and a last-request tracker as validator.
func NewStore(
	shows domain.ShowLookup,
	remote domain.ImageRepository,
	sot cache.SourceOfTruth[int64, domain.ShowImages],
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
		cache: cache.New[int64, domain.ShowImages](f, sot, freshness,
			cache.WithName("show_images"),
			cache.WithMaxAge(cfg.MaxAge),
			cache.WithStaleFallback(cfg.StaleOnError),
			cache.WithLogger(logger),
		),
	}
}

// Get returns the freshest available images for a show.
func (s *Store) Get(ctx context.Context, showID int64) (domain.ShowImages, error) {
	images, err := s.cache.Get(ctx, showID)
	if err != nil {
		return domain.ShowImages{}, err
	}
	return normalize(showID, images), nil
}

// Refresh fetches images from the provider regardless of freshness.
func (s *Store) Refresh(ctx context.Context, showID int64) (domain.ShowImages, error) {
	images, err := s.cache.Fresh(ctx, showID)
	if err != nil {
		return domain.ShowImages{}, err
	}
	return normalize(showID, images), nil
}

// Cached returns stored images without contacting the provider.
func (s *Store) Cached(ctx context.Context, showID int64) (domain.ShowImages, bool, error) {
	images, ok, err := s.cache.Cached(ctx, showID)
	if err != nil || !ok {
		return domain.ShowImages{ShowID: showID, Images: []domain.ShowImage{}}, ok, err
	}
	return normalize(showID, images), true, nil
}

func (s *Store) Clear(ctx context.Context, showID int64) error {
	return s.cache.Clear(ctx, showID)
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.cache.ClearAll(ctx)
}

// normalize fills in the key for values read before anything was stored.
func normalize(showID int64, images domain.ShowImages) domain.ShowImages {
	images.ShowID = showID
	if images.Images == nil {
		images.Images = []domain.ShowImage{}
	}
	return images
}

type fetcher struct {
	shows  domain.ShowLookup
	remote domain.ImageRepository
	logger *slog.Logger
}

// Fetch resolves the show's provider ID and downloads its artwork. A show
// that is unknown or has no provider mapping yields an empty image set with
// cache.ErrNoOrigin, so it is stored but not stamped fresh.
func (f *fetcher) Fetch(ctx context.Context, showID int64) (domain.ShowImages, error) {
	empty := domain.ShowImages{ShowID: showID, Images: []domain.ShowImage{}}

	show, err := f.shows.Get(ctx, showID)
	if errors.Is(err, domain.ErrShowNotFound) {
		f.logger.Debug("no local show, storing empty images", "showID", showID)
		return empty, cache.ErrNoOrigin
	}
	if err != nil {
		return domain.ShowImages{}, fmt.Errorf("resolve show %d: %w", showID, err)
	}
	if !show.HasExternalID() {
		f.logger.Debug("show has no tmdb id, storing empty images", "showID", showID)
		return empty, cache.ErrNoOrigin
	}

	remote, err := f.remote.GetShowImages(ctx, show.TmdbID)
	if err != nil {
		return domain.ShowImages{}, err
	}

	images := make([]domain.ShowImage, 0, len(remote))
	for _, img := range remote {
		img.ShowID = showID
		switch img.Type {
		case domain.ImageTypePoster:
			img.IsPrimary = img.Path == show.PosterPath
		case domain.ImageTypeBackdrop:
			img.IsPrimary = img.Path == show.BackdropPath
		}
		images = append(images, img)
	}

	f.logger.Debug("fetched show images", "showID", showID, "count", len(images))
	return domain.ShowImages{ShowID: showID, Images: images}, nil
}

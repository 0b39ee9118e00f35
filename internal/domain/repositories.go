package domain

import "context"

// ShowRepository provides show metadata from the remote provider
type ShowRepository interface {
	// GetShow returns show details and season summaries (without episodes)
	GetShow(ctx context.Context, tmdbID int64) (*RemoteShow, error)

	// SearchShows searches the provider catalogue by title
	SearchShows(ctx context.Context, query string, page int) ([]Show, error)

	// PopularShows returns the provider's popular list
	PopularShows(ctx context.Context, page int) ([]Show, error)
}

// ImageRepository provides artwork from the remote provider
type ImageRepository interface {
	// GetShowImages returns all artwork for a provider show ID.
	// ShowID on the returned images is not set.
	GetShowImages(ctx context.Context, tmdbID int64) ([]ShowImage, error)
}

// SeasonRepository provides season and episode listings
type SeasonRepository interface {
	GetShow(ctx context.Context, tmdbID int64) (*RemoteShow, error)

	// GetSeason returns a season with its episodes
	GetSeason(ctx context.Context, tmdbID int64, number int) (*Season, error)
}

// RemoteShow is a show as the provider describes it.
type RemoteShow struct {
	Show
	Seasons []Season
}

// ShowLookup resolves internal show IDs to tracked shows
type ShowLookup interface {
	Get(ctx context.Context, id int64) (Show, error)
}

package seasons

import (
	"context"

	"github.com/mmcdole/showtrack/internal/domain"
)

// Params selects which show to load and whether to bypass the freshness
// window.
type Params struct {
	ShowID    int64
	ForceLoad bool
}

// FetchShowSeasons loads seasons for callers that may want to force a
// reload, such as a pull-to-refresh.
type FetchShowSeasons struct {
	store *Store
}

func NewFetchShowSeasons(store *Store) *FetchShowSeasons {
	return &FetchShowSeasons{store: store}
}

func (f *FetchShowSeasons) Run(ctx context.Context, p Params) (domain.ShowSeasons, error) {
	if p.ForceLoad {
		return f.store.Refresh(ctx, p.ShowID)
	}
	return f.store.Get(ctx, p.ShowID)
}

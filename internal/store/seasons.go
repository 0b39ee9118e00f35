package store

import (
	"context"

	"github.com/mmcdole/showtrack/internal/domain"
)

// SeasonStore is the source of truth for cached season listings.
type SeasonStore struct {
	keyed keyedStore[domain.ShowSeasons]
}

func NewSeasonStore(db Backend) *SeasonStore {
	return &SeasonStore{keyed: keyedStore[domain.ShowSeasons]{db: db, bucket: bucketSeasons}}
}

func (s *SeasonStore) Read(ctx context.Context, showID int64) (domain.ShowSeasons, bool, error) {
	return s.keyed.read(ctx, showID)
}

func (s *SeasonStore) Write(ctx context.Context, showID int64, seasons domain.ShowSeasons) error {
	stamped := domain.ShowSeasons{ShowID: showID, Seasons: make([]domain.Season, len(seasons.Seasons))}
	for i, season := range seasons.Seasons {
		season.ShowID = showID
		stamped.Seasons[i] = season
	}
	return s.keyed.write(ctx, showID, stamped)
}

func (s *SeasonStore) Delete(ctx context.Context, showID int64) error {
	return s.keyed.delete(ctx, showID)
}

func (s *SeasonStore) DeleteAll(ctx context.Context) error {
	return s.keyed.deleteAll(ctx)
}

package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/showtrack/internal/domain"
)

const (
	showPrefix = "show:"
	tmdbPrefix = "tmdb:"
	seqShows   = "seq:shows"
)

// ShowStore persists tracked shows. A secondary tmdb:{id} index maps provider
// IDs back to internal IDs.
type ShowStore struct {
	db  Backend
	now func() time.Time
}

func NewShowStore(db Backend) *ShowStore {
	return &ShowStore{db: db, now: time.Now}
}

// Get returns the show with the given internal ID or domain.ErrShowNotFound.
func (s *ShowStore) Get(ctx context.Context, id int64) (domain.Show, error) {
	var show domain.Show
	var found bool
	err := s.db.View(ctx, func(tx Tx) error {
		var err error
		found, err = getJSON(tx, bucketShows, showPrefix+idKey(id), &show)
		return err
	})
	if err != nil {
		return domain.Show{}, err
	}
	if !found {
		return domain.Show{}, fmt.Errorf("show %d: %w", id, domain.ErrShowNotFound)
	}
	return show, nil
}

// FindByTmdbID returns the tracked show mapped to a provider ID.
func (s *ShowStore) FindByTmdbID(ctx context.Context, tmdbID int64) (domain.Show, error) {
	var show domain.Show
	var found bool
	err := s.db.View(ctx, func(tx Tx) error {
		var id int64
		ok, err := getJSON(tx, bucketShows, tmdbPrefix+idKey(tmdbID), &id)
		if err != nil || !ok {
			return err
		}
		found, err = getJSON(tx, bucketShows, showPrefix+idKey(id), &show)
		return err
	})
	if err != nil {
		return domain.Show{}, err
	}
	if !found {
		return domain.Show{}, fmt.Errorf("tmdb show %d: %w", tmdbID, domain.ErrShowNotFound)
	}
	return show, nil
}

// Save inserts or replaces a show. Shows with ID 0 get the next sequence ID.
// The saved show (with ID and timestamps) is returned.
func (s *ShowStore) Save(ctx context.Context, show domain.Show) (domain.Show, error) {
	now := s.now().Unix()
	err := s.db.Update(ctx, func(tx Tx) error {
		if show.ID == 0 {
			var seq int64
			if _, err := getJSON(tx, bucketMeta, seqShows, &seq); err != nil {
				return err
			}
			seq++
			if err := putJSON(tx, bucketMeta, seqShows, seq); err != nil {
				return err
			}
			show.ID = seq
			show.AddedAt = now
		} else {
			// Drop a stale provider index entry if the mapping changed
			var prev domain.Show
			ok, err := getJSON(tx, bucketShows, showPrefix+idKey(show.ID), &prev)
			if err != nil {
				return err
			}
			if ok && prev.TmdbID != show.TmdbID && prev.HasExternalID() {
				if err := tx.Delete(bucketShows, tmdbPrefix+idKey(prev.TmdbID)); err != nil {
					return err
				}
			}
			if ok && show.AddedAt == 0 {
				show.AddedAt = prev.AddedAt
			}
		}
		show.UpdatedAt = now

		if err := putJSON(tx, bucketShows, showPrefix+idKey(show.ID), show); err != nil {
			return err
		}
		if show.HasExternalID() {
			return putJSON(tx, bucketShows, tmdbPrefix+idKey(show.TmdbID), show.ID)
		}
		return nil
	})
	if err != nil {
		return domain.Show{}, fmt.Errorf("save show: %w", err)
	}
	return show, nil
}

// List returns all tracked shows sorted by title.
func (s *ShowStore) List(ctx context.Context) ([]domain.Show, error) {
	var shows []domain.Show
	err := s.db.View(ctx, func(tx Tx) error {
		return tx.ForEach(bucketShows, showPrefix, func(_ string, value []byte) error {
			var show domain.Show
			if err := decode(value, &show); err != nil {
				return err
			}
			shows = append(shows, show)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(shows, func(i, j int) bool {
		return shows[i].SortTitle() < shows[j].SortTitle()
	})
	return shows, nil
}

// Delete removes a show and its provider index entry.
func (s *ShowStore) Delete(ctx context.Context, id int64) error {
	return s.db.Update(ctx, func(tx Tx) error {
		var show domain.Show
		ok, err := getJSON(tx, bucketShows, showPrefix+idKey(id), &show)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("show %d: %w", id, domain.ErrShowNotFound)
		}
		if show.HasExternalID() {
			if err := tx.Delete(bucketShows, tmdbPrefix+idKey(show.TmdbID)); err != nil {
				return err
			}
		}
		return tx.Delete(bucketShows, showPrefix+idKey(id))
	})
}

// Package library manages the set of tracked shows and discovery of new
// ones from TMDB.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/showtrack/internal/domain"
)

// ShowStore persists tracked shows.
type ShowStore interface {
	Get(ctx context.Context, id int64) (domain.Show, error)
	FindByTmdbID(ctx context.Context, tmdbID int64) (domain.Show, error)
	Save(ctx context.Context, show domain.Show) (domain.Show, error)
	List(ctx context.Context) ([]domain.Show, error)
	Delete(ctx context.Context, id int64) error
}

// Clearer drops a show's cached values.
type Clearer interface {
	Clear(ctx context.Context, showID int64) error
}

// RequestLog records and forgets refresh times.
type RequestLog interface {
	UpdateLastRequest(ctx context.Context, req domain.Request, entityID int64) error
	Invalidate(ctx context.Context, req domain.Request, entityID int64) error
}

// Service orchestrates the TMDB client and the local show store.
type Service struct {
	remote   domain.ShowRepository
	shows    ShowStore
	caches   []Clearer
	requests RequestLog
	logger   *slog.Logger
}

// NewService creates a new library service. caches are cleared for a show
// when it is removed.
func NewService(remote domain.ShowRepository, shows ShowStore, requests RequestLog, logger *slog.Logger, caches ...Clearer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, shows: shows, caches: caches, requests: requests, logger: logger}
}

// AddShow starts tracking a show by TMDB ID. Adding a show that is already
// tracked refreshes its details and keeps its internal ID.
func (s *Service) AddShow(ctx context.Context, tmdbID int64) (domain.Show, error) {
	remote, err := s.remote.GetShow(ctx, tmdbID)
	if err != nil {
		s.logger.Error("failed to fetch show", "tmdbID", tmdbID, "error", err)
		return domain.Show{}, err
	}

	show := remote.Show
	show.TmdbID = tmdbID
	existing, err := s.shows.FindByTmdbID(ctx, tmdbID)
	switch {
	case err == nil:
		show.ID = existing.ID
		show.AddedAt = existing.AddedAt
	case !errors.Is(err, domain.ErrShowNotFound):
		return domain.Show{}, err
	}

	saved, err := s.shows.Save(ctx, show)
	if err != nil {
		return domain.Show{}, err
	}
	if show.ID == 0 {
		// A new ID may carry records written while nothing was tracked under it
		for _, req := range []domain.Request{domain.RequestShowImages, domain.RequestShowSeasons} {
			if err := s.requests.Invalidate(ctx, req, saved.ID); err != nil {
				s.logger.Warn("failed to reset refresh record", "showID", saved.ID, "request", req, "error", err)
			}
		}
	}
	if err := s.requests.UpdateLastRequest(ctx, domain.RequestShowDetails, saved.ID); err != nil {
		s.logger.Warn("failed to record details refresh", "showID", saved.ID, "error", err)
	}

	s.logger.Info("tracking show", "showID", saved.ID, "tmdbID", tmdbID, "title", saved.Title)
	return saved, nil
}

// AddShowByTitle searches TMDB and tracks the result whose title is closest
// to the query.
func (s *Service) AddShowByTitle(ctx context.Context, title string) (domain.Show, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Show{}, errors.New("title is required")
	}

	results, err := s.remote.SearchShows(ctx, title, 1)
	if err != nil {
		return domain.Show{}, err
	}
	best, ok := closestTitle(title, results)
	if !ok {
		return domain.Show{}, fmt.Errorf("search %q: %w", title, domain.ErrRemoteNotFound)
	}

	s.logger.Debug("matched title", "query", title, "match", best.Title, "tmdbID", best.TmdbID)
	return s.AddShow(ctx, best.TmdbID)
}

// closestTitle picks the result with the smallest edit distance to the
// query. Ties keep TMDB's relevance order.
func closestTitle(query string, results []domain.Show) (domain.Show, bool) {
	query = strings.ToLower(query)
	var best domain.Show
	bestDist := -1
	for _, show := range results {
		if !show.HasExternalID() {
			continue
		}
		dist := fuzzy.LevenshteinDistance(query, strings.ToLower(show.Title))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = show, dist
		}
	}
	return best, bestDist >= 0
}

// RemoveShow stops tracking a show and drops everything cached for it.
func (s *Service) RemoveShow(ctx context.Context, id int64) error {
	if err := s.shows.Delete(ctx, id); err != nil {
		return err
	}

	var errs []error
	for _, c := range s.caches {
		if err := c.Clear(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	for _, req := range domain.Requests() {
		if err := s.requests.Invalidate(ctx, req, id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("failed to clear cached data", "showID", id, "error", err)
		return fmt.Errorf("remove show %d: %w", id, err)
	}

	s.logger.Info("removed show", "showID", id)
	return nil
}

// Popular returns TMDB's popular list, marking shows that are already
// tracked with their internal ID.
func (s *Service) Popular(ctx context.Context, page int) ([]domain.Show, error) {
	shows, err := s.remote.PopularShows(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.markTracked(ctx, shows), nil
}

// SearchRemote searches TMDB by title.
func (s *Service) SearchRemote(ctx context.Context, query string, page int) ([]domain.Show, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	shows, err := s.remote.SearchShows(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return s.markTracked(ctx, shows), nil
}

func (s *Service) markTracked(ctx context.Context, shows []domain.Show) []domain.Show {
	for i := range shows {
		if tracked, err := s.shows.FindByTmdbID(ctx, shows[i].TmdbID); err == nil {
			shows[i].ID = tracked.ID
		}
	}
	return shows
}

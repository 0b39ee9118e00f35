package library

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/showtrack/internal/domain"
)

// Queries provides reads over tracked shows that never touch the network.
type Queries struct {
	shows ShowStore
}

func NewQueries(shows ShowStore) *Queries {
	return &Queries{shows: shows}
}

func (q *Queries) ListShows(ctx context.Context) ([]domain.Show, error) {
	return q.shows.List(ctx)
}

func (q *Queries) GetShow(ctx context.Context, id int64) (domain.Show, error) {
	return q.shows.Get(ctx, id)
}

// SearchResult is a tracked show matched by a local title search.
type SearchResult struct {
	Show           domain.Show `json:"show"`
	MatchedIndexes []int       `json:"matched_indexes"` // Character positions that matched
	Score          int         `json:"score"`           // Higher is better
}

// showIndex implements fuzzy.Source over lowercase titles
type showIndex struct {
	shows       []domain.Show
	lowerTitles []string
}

func (idx *showIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx *showIndex) Len() int            { return len(idx.shows) }

// Search ranks tracked shows by fuzzy title match, best first.
func (q *Queries) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	shows, err := q.shows.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := &showIndex{shows: shows, lowerTitles: make([]string, len(shows))}
	for i, show := range shows {
		idx.lowerTitles[i] = strings.ToLower(show.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Show:           idx.shows[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results, nil
}

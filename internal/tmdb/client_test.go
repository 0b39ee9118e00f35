package tmdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/showtrack/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_GetShowImages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1399/images", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{
			"id": 1399,
			"posters": [{"file_path": "/p1.jpg", "iso_639_1": "en", "vote_average": 5.4, "width": 500, "height": 750}],
			"backdrops": [{"file_path": "/b1.jpg", "iso_639_1": null}, {"file_path": ""}],
			"logos": [{"file_path": "/l1.png"}]
		}`))
	}, Config{AccessToken: "token"})

	images, err := client.GetShowImages(context.Background(), 1399)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, domain.ImageTypePoster, images[0].Type)
	assert.Equal(t, "/p1.jpg", images[0].Path)
	assert.Equal(t, "en", images[0].Lang)
	assert.Equal(t, 750, images[0].Height)
	assert.Equal(t, domain.ImageTypeBackdrop, images[1].Type)
	assert.Empty(t, images[1].Lang)
	assert.Equal(t, domain.ImageTypeLogo, images[2].Type)
}

func TestClient_GetShow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`{
			"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20",
			"status": "Ended", "vote_average": 8.9, "poster_path": "/poster.jpg",
			"networks": [{"id": 174, "name": "AMC"}],
			"seasons": [
				{"id": 2, "season_number": 2, "name": "Season 2", "episode_count": 13},
				{"id": 1, "season_number": 1, "name": "Season 1", "episode_count": 7}
			]
		}`))
	}, Config{APIKey: "key", Language: "en-US"})

	show, err := client.GetShow(context.Background(), 1396)
	require.NoError(t, err)
	assert.Equal(t, int64(1396), show.TmdbID)
	assert.Equal(t, "Breaking Bad", show.Title)
	assert.Equal(t, 2008, show.Year)
	assert.Equal(t, "AMC", show.Network)
	require.Len(t, show.Seasons, 2)
	assert.Equal(t, 1, show.Seasons[0].Number)
	assert.Equal(t, 7, show.Seasons[0].EpisodeCount)
}

func TestClient_GetSeason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396/season/1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 3572, "season_number": 1, "name": "Season 1",
			"episodes": [
				{"id": 62086, "episode_number": 2, "name": "Cat's in the Bag..."},
				{"id": 62085, "episode_number": 1, "name": "Pilot", "season_number": 1}
			]
		}`))
	}, Config{APIKey: "key"})

	season, err := client.GetSeason(context.Background(), 1396, 1)
	require.NoError(t, err)
	require.Len(t, season.Episodes, 2)
	assert.Equal(t, "Pilot", season.Episodes[0].Title)
	assert.Equal(t, "S01E02", season.Episodes[1].Code())
	assert.Equal(t, 2, season.EpisodeCount)
}

func TestClient_SearchAndPopular(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			assert.Equal(t, "wire", r.URL.Query().Get("query"))
			assert.Equal(t, "1", r.URL.Query().Get("page"))
		case "/tv/popular":
			assert.Equal(t, "3", r.URL.Query().Get("page"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"page": 1, "results": [{"id": 1438, "name": "The Wire", "first_air_date": "2002-06-02"}]}`))
	}, Config{APIKey: "key"})

	shows, err := client.SearchShows(context.Background(), "wire", 0)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, int64(1438), shows[0].TmdbID)
	assert.Equal(t, 2002, shows[0].Year)

	shows, err = client.PopularShows(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, shows, 1)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status_code": 7, "status_message": "Invalid API key"}`, domain.ErrAuthFailed},
		{"not found", http.StatusNotFound, `{"status_code": 34}`, domain.ErrRemoteNotFound},
		{"server error", http.StatusServiceUnavailable, ``, domain.ErrRemoteUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{"status_message": "slow down"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Config{APIKey: "key"})

			_, err := client.GetShowImages(context.Background(), 1)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: baseURL, APIKey: "key"}, nil)
	_, err := client.GetShowImages(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestClient_ImageURL(t *testing.T) {
	client := NewClient(Config{}, nil)
	assert.Equal(t, "https://image.tmdb.org/t/p/w342/a.jpg", client.ImageURL("/a.jpg", "w342"))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/a.jpg", client.ImageURL("/a.jpg", ""))
	assert.Empty(t, client.ImageURL("", "w342"))
}

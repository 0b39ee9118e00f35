package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/showtrack/internal/config"
	applog "github.com/mmcdole/showtrack/internal/log"
)

func TestNew_WiresEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/1396":
			_, _ = w.Write([]byte(`{"id": 1396, "name": "Breaking Bad", "poster_path": "/p.jpg"}`))
		case "/tv/1396/images":
			_, _ = w.Write([]byte(`{"posters": [{"file_path": "/p.jpg"}, {"file_path": "/q.jpg"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Store.Driver = "bolt"
	cfg.Store.Dir = t.TempDir()
	cfg.TMDB.BaseURL = srv.URL
	cfg.TMDB.APIKey = "key"

	a, err := New(cfg, applog.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	show, err := a.Library.AddShow(ctx, 1396)
	require.NoError(t, err)

	images, err := a.ShowImages.Get(ctx, show.ID)
	require.NoError(t, err)
	require.Len(t, images.Images, 2)
	primary, ok := images.Primary("poster")
	require.True(t, ok)
	assert.Equal(t, "/p.jpg", primary.Path)

	seasons, err := a.ShowSeasons.Get(ctx, show.ID)
	require.NoError(t, err)
	assert.Empty(t, seasons.Seasons)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	cfg := config.DefaultConfig()
	cfg.Store.Dir = t.TempDir()
	cfg.Store.Driver = "postgres"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	var a *App
	assert.NoError(t, a.Close())
}

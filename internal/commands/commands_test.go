package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/mmcdole/showtrack/internal/app"
	"github.com/mmcdole/showtrack/internal/config"
	applog "github.com/mmcdole/showtrack/internal/log"
)

func newTMDB(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/1396":
			_, _ = w.Write([]byte(`{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20",
				"poster_path": "/p.jpg", "seasons": [{"season_number": 1, "name": "Season 1", "episode_count": 1}]}`))
		case "/tv/1396/season/1":
			_, _ = w.Write([]byte(`{"season_number": 1, "episodes": [{"episode_number": 1, "name": "Pilot"}]}`))
		case "/tv/1396/images":
			_, _ = w.Write([]byte(`{"posters": [{"file_path": "/p.jpg", "width": 500, "height": 750}]}`))
		case "/search/tv":
			_, _ = w.Write([]byte(`{"results": [{"id": 1396, "name": "Breaking Bad"}]}`))
		case "/tv/popular":
			if r.URL.Query().Get("api_key") == "bad" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"results": [{"id": 1438, "name": "The Wire"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	app   *app.App
	flags *Flags
	out   bytes.Buffer
	err   bytes.Buffer
}

func newHarness(t *testing.T, apiKey string) *harness {
	t.Helper()
	srv := newTMDB(t)

	cfg := config.DefaultConfig()
	cfg.Store.Dir = t.TempDir()
	cfg.TMDB.BaseURL = srv.URL
	cfg.TMDB.APIKey = apiKey

	a, err := app.New(cfg, applog.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &harness{app: a, flags: &Flags{ConfigPath: filepath.Join(t.TempDir(), "config.yaml")}}
}

// run builds a fresh command tree so flag destinations start from defaults.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.err.Reset()

	root := &cli.Command{Name: "showtrack", Writer: &h.out, ErrWriter: &h.err}
	root = NewShowsCmd(h.flags, h.app).Register(root)
	root = NewCacheCmd(h.flags, h.app).Register(root)
	root = NewServeCmd(h.flags, h.app).Register(root)
	root = NewInitCmd(h.flags, h.app).Register(root)
	return root.Run(context.Background(), append([]string{"showtrack"}, args...))
}

func TestAddListRemove(t *testing.T) {
	h := newHarness(t, "key")

	require.NoError(t, h.run(t, "add", "1396"))
	assert.Contains(t, h.out.String(), "Tracking Breaking Bad (id 1)")

	require.NoError(t, h.run(t, "list"))
	assert.Contains(t, h.out.String(), "Breaking Bad")
	assert.Contains(t, h.out.String(), "2008")

	require.NoError(t, h.run(t, "search", "breaking"))
	assert.Contains(t, h.out.String(), "Breaking Bad")

	require.NoError(t, h.run(t, "remove", "1"))
	require.NoError(t, h.run(t, "list"))
	assert.Equal(t, "No shows found\n", h.err.String())

	assert.Error(t, h.run(t, "remove", "1"))
	assert.Error(t, h.run(t, "remove", "abc"))
}

func TestAddByTitle(t *testing.T) {
	h := newHarness(t, "key")
	require.NoError(t, h.run(t, "add", "breaking", "bad"))
	assert.Contains(t, h.out.String(), "Breaking Bad")
}

func TestImagesAndSeasons(t *testing.T) {
	h := newHarness(t, "key")
	require.NoError(t, h.run(t, "add", "1396"))

	require.NoError(t, h.run(t, "images", "--size", "w342", "1"))
	assert.Contains(t, h.out.String(), "https://image.tmdb.org/t/p/w342/p.jpg")
	assert.Contains(t, h.out.String(), "1 posters")

	require.NoError(t, h.run(t, "seasons", "--episodes", "1"))
	assert.Contains(t, h.out.String(), "S01E01")

	require.NoError(t, h.run(t, "cache", "clear", "--show", "1"))
	_, ok, err := h.app.ShowImages.Cached(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.run(t, "images", "1"))
	require.NoError(t, h.run(t, "cache", "clear"))
	assert.Contains(t, h.out.String(), "Cleared all")
}

func TestRemoteSearchAndPopular(t *testing.T) {
	h := newHarness(t, "key")

	require.NoError(t, h.run(t, "search", "--remote", "breaking"))
	assert.Contains(t, h.out.String(), "1396")

	require.NoError(t, h.run(t, "popular", "--page", "2"))
	assert.Contains(t, h.out.String(), "The Wire")
}

func TestRequiresCredentials(t *testing.T) {
	h := newHarness(t, "")
	for _, args := range [][]string{{"add", "1396"}, {"popular"}, {"images", "1"}, {"seasons", "1"}, {"serve"}} {
		err := h.run(t, args...)
		assert.ErrorIs(t, err, errNotConfigured, strings.Join(args, " "))
	}

	// Local reads work without credentials
	assert.NoError(t, h.run(t, "list"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit missing file fails", func(t *testing.T) {
		flags := &Flags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}
		_, err := flags.LoadConfig("list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("init tolerates a missing file", func(t *testing.T) {
		flags := &Flags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), DataDir: t.TempDir()}
		cfg, err := flags.LoadConfig("init")
		require.NoError(t, err)
		assert.Equal(t, flags.DataDir, cfg.Store.Dir)
	})

	t.Run("default location may be missing", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("APPDATA", home)
		flags := &Flags{ConfigPath: config.DefaultConfigFile(), Driver: "sqlite"}
		cfg, err := flags.LoadConfig("list")
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Store.Driver)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, config.Save(config.DefaultConfig(), path))
		flags := &Flags{ConfigPath: path, LogLevel: "debug"}
		cfg, err := flags.LoadConfig("list")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestInit(t *testing.T) {
	h := newHarness(t, "")
	cmd := NewInitCmd(h.flags, h.app)
	cmd.in = strings.NewReader("\nbad\ngoodkey\n")

	root := &cli.Command{Name: "showtrack", Writer: &h.out, ErrWriter: &h.err}
	root = cmd.Register(root)
	require.NoError(t, root.Run(context.Background(), []string{"showtrack", "init"}))

	out := h.out.String()
	assert.Contains(t, out, "Credential cannot be empty")
	assert.Contains(t, out, "Could not verify credential")
	assert.Contains(t, out, "Saved configuration")

	saved, err := config.Load(h.flags.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "goodkey", saved.TMDB.APIKey)
	assert.Equal(t, "goodkey", h.app.Config.TMDB.APIKey)
}

package printer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/library"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestShows(t *testing.T) {
	p, out, _ := newTestPrinter()
	assert.False(t, p.styled)

	p.Shows([]domain.Show{
		{ID: 1, TmdbID: 1396, Title: "Breaking Bad", Year: 2008, Network: "AMC"},
		{ID: 2, Title: "Home Movies"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Breaking Bad")
	assert.Contains(t, lines[1], "2008")
	assert.Contains(t, lines[2], "-")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestShows_Empty(t *testing.T) {
	p, out, errOut := newTestPrinter()
	p.Shows(nil)
	assert.Empty(t, out.String())
	assert.Equal(t, "No shows found\n", errOut.String())

	p.SearchResults([]library.SearchResult{})
	assert.Contains(t, errOut.String(), "No shows found")
}

func TestImages(t *testing.T) {
	p, out, _ := newTestPrinter()
	p.Images(domain.ShowImages{ShowID: 1, Images: []domain.ShowImage{
		{Type: domain.ImageTypeLogo, Path: "/l.png"},
		{Type: domain.ImageTypePoster, Path: "/p.jpg", IsPrimary: true, Width: 500, Height: 750, Lang: "en"},
	}}, func(path string) string { return "https://img" + path })

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "poster")
	assert.Contains(t, lines[1], "*")
	assert.Contains(t, lines[1], "500x750")
	assert.Contains(t, lines[1], "https://img/p.jpg")
	assert.Contains(t, lines[2], "logo")
	assert.Equal(t, "1 posters, 0 backdrops, 1 logos", lines[3])
}

func TestSeasons(t *testing.T) {
	seasons := domain.ShowSeasons{Seasons: []domain.Season{
		{Number: 1, EpisodeCount: 2, Episodes: []domain.Episode{
			{SeasonNum: 1, Number: 1, Title: "Pilot"},
			{SeasonNum: 1, Number: 2, Title: "Second"},
		}},
	}}

	p, out, _ := newTestPrinter()
	p.Seasons(seasons, false)
	assert.Contains(t, out.String(), "Season 1")

	p, out, _ = newTestPrinter()
	p.Seasons(seasons, true)
	assert.Contains(t, out.String(), "S01E02")
	assert.Contains(t, out.String(), "Second")
}

func TestSpin_NoTerminalRunsFn(t *testing.T) {
	p, _, errOut := newTestPrinter()
	want := errors.New("boom")
	err := p.Spin(context.Background(), "loading", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
	assert.Empty(t, errOut.String())
}

// Package printer renders command output. Tables are styled with lipgloss
// when writing to a terminal and left plain otherwise.
package printer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mmcdole/showtrack/internal/domain"
	"github.com/mmcdole/showtrack/internal/library"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	primaryMark  = "*"
)

// Printer writes human readable output.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	styled bool
}

// New returns a Printer for out, enabling styles when out is a terminal.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut, styled: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// table renders rows with tabwriter, then styles the header line so escape
// codes do not skew column widths.
func (p *Printer) table(header []string, rows [][]string) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()

	lines := strings.SplitAfterN(buf.String(), "\n", 2)
	if p.styled {
		lines[0] = headerStyle.Render(strings.TrimRight(lines[0], " \n")) + "\n"
	}
	for _, line := range lines {
		_, _ = io.WriteString(p.out, line)
	}
}

func (p *Printer) muted(s string) string {
	if p.styled {
		return mutedStyle.Render(s)
	}
	return s
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.styled {
		msg = successStyle.Render(msg)
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

// Empty prints a note to stderr when there is nothing to show.
func (p *Printer) Empty(what string) {
	_, _ = fmt.Fprintf(p.errOut, "No %s found\n", what)
}

func (p *Printer) Shows(shows []domain.Show) {
	if len(shows) == 0 {
		p.Empty("shows")
		return
	}
	rows := make([][]string, len(shows))
	for i, s := range shows {
		rows[i] = []string{idOrDash(s.ID), idOrDash(s.TmdbID), s.Title, yearOrDash(s.Year), s.Network}
	}
	p.table([]string{"ID", "TMDB", "TITLE", "YEAR", "NETWORK"}, rows)
}

func (p *Printer) SearchResults(results []library.SearchResult) {
	shows := make([]domain.Show, len(results))
	for i, r := range results {
		shows[i] = r.Show
	}
	p.Shows(shows)
}

// Images lists artwork grouped by type. url builds a full link from a path.
func (p *Printer) Images(images domain.ShowImages, url func(path string) string) {
	if len(images.Images) == 0 {
		p.Empty("images")
		return
	}
	rows := make([][]string, 0, len(images.Images))
	for _, t := range []domain.ImageType{domain.ImageTypePoster, domain.ImageTypeBackdrop, domain.ImageTypeLogo} {
		for _, img := range images.Images {
			if img.Type != t {
				continue
			}
			mark := ""
			if img.IsPrimary {
				mark = primaryMark
			}
			rows = append(rows, []string{
				string(img.Type), mark, fmt.Sprintf("%dx%d", img.Width, img.Height),
				langOrDash(img.Lang), url(img.Path),
			})
		}
	}
	p.table([]string{"TYPE", "PRIMARY", "SIZE", "LANG", "URL"}, rows)
	_, _ = fmt.Fprintln(p.out, p.muted(fmt.Sprintf("%d posters, %d backdrops, %d logos",
		images.Count(domain.ImageTypePoster), images.Count(domain.ImageTypeBackdrop), images.Count(domain.ImageTypeLogo))))
}

func (p *Printer) Seasons(seasons domain.ShowSeasons, withEpisodes bool) {
	if len(seasons.Seasons) == 0 {
		p.Empty("seasons")
		return
	}
	if !withEpisodes {
		rows := make([][]string, len(seasons.Seasons))
		for i, s := range seasons.Seasons {
			rows[i] = []string{s.DisplayTitle(), fmt.Sprint(s.EpisodeCount), dateOrDash(s.AirDate)}
		}
		p.table([]string{"SEASON", "EPISODES", "AIRED"}, rows)
		return
	}

	var rows [][]string
	for _, s := range seasons.Seasons {
		for _, e := range s.Episodes {
			rows = append(rows, []string{e.Code(), e.Title, dateOrDash(e.AirDate)})
		}
	}
	p.table([]string{"EPISODE", "TITLE", "AIRED"}, rows)
}

// Spin runs fn while animating a spinner on stderr. Without a terminal it
// just runs fn.
func (p *Printer) Spin(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	if !isTerminal(p.errOut) {
		return fn(ctx)
	}

	s := spinner.Dot
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			_, _ = fmt.Fprintf(p.errOut, "\r%s %s", s.Frames[i%len(s.Frames)], label)
			select {
			case <-done:
				_, _ = fmt.Fprintf(p.errOut, "\r%s\r", strings.Repeat(" ", len(label)+4))
				return
			case <-ticker.C:
			}
		}
	}()

	err := fn(ctx)
	close(done)
	wg.Wait()
	return err
}

func idOrDash(id int64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprint(id)
}

func yearOrDash(y int) string {
	if y == 0 {
		return "-"
	}
	return fmt.Sprint(y)
}

func langOrDash(l string) string {
	if l == "" {
		return "-"
	}
	return l
}

func dateOrDash(d string) string {
	if d == "" {
		return "-"
	}
	return d
}

package domain

import (
	"fmt"
	"strings"
)

// Show is a tracked TV series.
type Show struct {
	ID            int64   `json:"id"`             // Internal identifier (cache key)
	TmdbID        int64   `json:"tmdb_id"`        // TMDB identifier, 0 when unmapped
	Title         string  `json:"title"`          // Display title
	OriginalTitle string  `json:"original_title"` // Title in the original language
	Summary       string  `json:"summary"`        // Series synopsis
	Year          int     `json:"year"`           // First air year
	Status        string  `json:"status"`         // "Returning Series", "Ended", ...
	Network       string  `json:"network"`        // Primary network name
	Rating        float64 `json:"rating"`         // 0-10 community rating
	PosterPath    string  `json:"poster_path"`    // Primary poster (provider path)
	BackdropPath  string  `json:"backdrop_path"`  // Primary backdrop (provider path)
	AddedAt       int64   `json:"added_at"`       // Unix timestamp when tracked
	UpdatedAt     int64   `json:"updated_at"`     // Unix timestamp of last details refresh
}

// HasExternalID reports whether the show is mapped to a remote provider.
func (s Show) HasExternalID() bool {
	return s.TmdbID > 0
}

// SortTitle returns the title used for alphabetical sorting
func (s Show) SortTitle() string {
	title := strings.ToLower(s.Title)
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(title, article) {
			return strings.TrimPrefix(title, article)
		}
	}
	return title
}

// ImageType identifies the kind of artwork.
type ImageType string

const (
	ImageTypePoster   ImageType = "poster"
	ImageTypeBackdrop ImageType = "backdrop"
	ImageTypeLogo     ImageType = "logo"
)

// ShowImage is a single piece of artwork belonging to a show.
type ShowImage struct {
	ShowID    int64     `json:"show_id"`
	Type      ImageType `json:"type"`
	Path      string    `json:"path"`
	Lang      string    `json:"lang,omitempty"`
	Rating    float64   `json:"rating"`
	VoteCount int       `json:"vote_count"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	IsPrimary bool      `json:"is_primary"`
}

// ShowImages is the cached image set for a show. An empty Images slice is a
// valid value meaning "the origin has nothing for this show".
type ShowImages struct {
	ShowID int64       `json:"show_id"`
	Images []ShowImage `json:"images"`
}

// Primary returns the primary image of the given type, falling back to the
// highest rated one.
func (s ShowImages) Primary(t ImageType) (ShowImage, bool) {
	var best ShowImage
	found := false
	for _, img := range s.Images {
		if img.Type != t {
			continue
		}
		if img.IsPrimary {
			return img, true
		}
		if !found || img.Rating > best.Rating {
			best = img
			found = true
		}
	}
	return best, found
}

// Count returns the number of images of the given type
func (s ShowImages) Count(t ImageType) int {
	n := 0
	for _, img := range s.Images {
		if img.Type == t {
			n++
		}
	}
	return n
}

// Season is a season of a show along with its episodes.
type Season struct {
	ID           int64     `json:"id"`
	ShowID       int64     `json:"show_id"`
	TmdbID       int64     `json:"tmdb_id"`
	Number       int       `json:"number"` // 0 = Specials
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	AirDate      string    `json:"air_date,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	EpisodeCount int       `json:"episode_count"`
	Episodes     []Episode `json:"episodes"`
}

// DisplayTitle returns the display title for the season
func (s Season) DisplayTitle() string {
	if s.Number == 0 {
		return "Specials"
	}
	if s.Title != "" && s.Title != fmt.Sprintf("Season %d", s.Number) {
		return fmt.Sprintf("Season %d: %s", s.Number, s.Title)
	}
	return fmt.Sprintf("Season %d", s.Number)
}

// Episode is a single episode within a season.
type Episode struct {
	ID        int64   `json:"id"`
	TmdbID    int64   `json:"tmdb_id"`
	SeasonNum int     `json:"season_num"`
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	AirDate   string  `json:"air_date,omitempty"`
	Rating    float64 `json:"rating"`
}

// Code returns the formatted episode code (e.g., "S01E05")
func (e Episode) Code() string {
	return fmt.Sprintf("S%02dE%02d", e.SeasonNum, e.Number)
}

// ShowSeasons is the cached season list for a show.
type ShowSeasons struct {
	ShowID  int64    `json:"show_id"`
	Seasons []Season `json:"seasons"`
}

// EpisodeCount returns the total number of episodes across all seasons
func (s ShowSeasons) EpisodeCount() int {
	n := 0
	for _, season := range s.Seasons {
		n += len(season.Episodes)
	}
	return n
}

// Request identifies a kind of remote refresh tracked by the last-request store.
type Request string

const (
	RequestShowImages  Request = "show_images"
	RequestShowSeasons Request = "show_seasons"
	RequestShowDetails Request = "show_details"
)

// Requests lists every request kind, used when wiping a show's records.
func Requests() []Request {
	return []Request{RequestShowImages, RequestShowSeasons, RequestShowDetails}
}

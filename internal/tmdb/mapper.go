package tmdb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mmcdole/showtrack/internal/domain"
)

// MapShow converts show details to a domain show (ID is left unset)
func MapShow(d ShowDetails) domain.Show {
	show := domain.Show{
		TmdbID:        d.ID,
		Title:         d.Name,
		OriginalTitle: d.OriginalName,
		Summary:       d.Overview,
		Year:          parseYear(d.FirstAirDate),
		Status:        d.Status,
		Rating:        d.VoteAverage,
		PosterPath:    d.PosterPath,
		BackdropPath:  d.BackdropPath,
	}
	if len(d.Networks) > 0 {
		show.Network = d.Networks[0].Name
	}
	return show
}

// MapRemoteShow converts show details including season summaries
func MapRemoteShow(d ShowDetails) *domain.RemoteShow {
	remote := &domain.RemoteShow{Show: MapShow(d)}
	for _, s := range d.Seasons {
		remote.Seasons = append(remote.Seasons, domain.Season{
			TmdbID:       s.ID,
			Number:       s.SeasonNumber,
			Title:        s.Name,
			Summary:      s.Overview,
			AirDate:      s.AirDate,
			PosterPath:   s.PosterPath,
			EpisodeCount: s.EpisodeCount,
		})
	}
	sort.Slice(remote.Seasons, func(i, j int) bool {
		return remote.Seasons[i].Number < remote.Seasons[j].Number
	})
	return remote
}

// MapShowSummaries converts a page of search or popular results
func MapShowSummaries(results []ShowSummary) []domain.Show {
	shows := make([]domain.Show, 0, len(results))
	for _, r := range results {
		shows = append(shows, domain.Show{
			TmdbID:        r.ID,
			Title:         r.Name,
			OriginalTitle: r.OriginalName,
			Summary:       r.Overview,
			Year:          parseYear(r.FirstAirDate),
			Rating:        r.VoteAverage,
			PosterPath:    r.PosterPath,
			BackdropPath:  r.BackdropPath,
		})
	}
	return shows
}

// MapSeason converts season details with episodes
func MapSeason(d SeasonDetails) *domain.Season {
	season := &domain.Season{
		TmdbID:       d.ID,
		Number:       d.SeasonNumber,
		Title:        d.Name,
		Summary:      d.Overview,
		AirDate:      d.AirDate,
		PosterPath:   d.PosterPath,
		EpisodeCount: len(d.Episodes),
		Episodes:     make([]domain.Episode, 0, len(d.Episodes)),
	}
	for _, e := range d.Episodes {
		num := e.SeasonNumber
		if num == 0 {
			num = d.SeasonNumber
		}
		season.Episodes = append(season.Episodes, domain.Episode{
			TmdbID:    e.ID,
			SeasonNum: num,
			Number:    e.EpisodeNumber,
			Title:     e.Name,
			Summary:   e.Overview,
			AirDate:   e.AirDate,
			Rating:    e.VoteAverage,
		})
	}
	sort.Slice(season.Episodes, func(i, j int) bool {
		return season.Episodes[i].Number < season.Episodes[j].Number
	})
	return season
}

// MapImages flattens posters, backdrops and logos into one list
func MapImages(resp ImagesResponse) []domain.ShowImage {
	images := make([]domain.ShowImage, 0, len(resp.Posters)+len(resp.Backdrops)+len(resp.Logos))
	images = appendImages(images, domain.ImageTypePoster, resp.Posters)
	images = appendImages(images, domain.ImageTypeBackdrop, resp.Backdrops)
	images = appendImages(images, domain.ImageTypeLogo, resp.Logos)
	return images
}

func appendImages(dst []domain.ShowImage, t domain.ImageType, src []Image) []domain.ShowImage {
	for _, img := range src {
		if img.FilePath == "" {
			continue
		}
		lang := ""
		if img.Language != nil {
			lang = *img.Language
		}
		dst = append(dst, domain.ShowImage{
			Type:      t,
			Path:      img.FilePath,
			Lang:      lang,
			Rating:    img.VoteAverage,
			VoteCount: img.VoteCount,
			Width:     img.Width,
			Height:    img.Height,
		})
	}
	return dst
}

// parseYear extracts the year from a "YYYY-MM-DD" date
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(strings.TrimSpace(date[:4]))
	if err != nil {
		return 0
	}
	return year
}

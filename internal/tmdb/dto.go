package tmdb

// ShowDetails is the /tv/{id} response
type ShowDetails struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	Overview         string          `json:"overview"`
	FirstAirDate     string          `json:"first_air_date"`
	Status           string          `json:"status"`
	VoteAverage      float64         `json:"vote_average"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	Networks         []Network       `json:"networks"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	Seasons          []SeasonSummary `json:"seasons"`
}

// Network is a broadcaster or streaming service
type Network struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SeasonSummary is a season entry embedded in ShowDetails
type SeasonSummary struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path"`
}

// SeasonDetails is the /tv/{id}/season/{n} response
type SeasonDetails struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	PosterPath   string    `json:"poster_path"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is an episode entry in SeasonDetails
type Episode struct {
	ID            int64   `json:"id"`
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	VoteAverage   float64 `json:"vote_average"`
}

// ImagesResponse is the /tv/{id}/images response
type ImagesResponse struct {
	ID        int64   `json:"id"`
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
	Logos     []Image `json:"logos"`
}

// Image is a single artwork entry
type Image struct {
	FilePath    string  `json:"file_path"`
	AspectRatio float64 `json:"aspect_ratio"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	Language    *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// PagedShows is a paginated list of shows (/search/tv, /tv/popular)
type PagedShows struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []ShowSummary `json:"results"`
}

// ShowSummary is a show entry in a paginated list
type ShowSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
}

// ErrorResponse is the body TMDB returns on failures
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

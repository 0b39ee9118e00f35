package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/showtrack/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultTimeout      = 30 * time.Second
	userAgent           = "showtrack/1.0"
)

// Config holds what the client needs to talk to TMDB. Either AccessToken
// (v4 read token) or APIKey (v3 key) must be set.
type Config struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	AccessToken  string
	Language     string
	Timeout      time.Duration
}

// Client implements domain.ShowRepository, domain.ImageRepository and
// domain.SeasonRepository for TMDB
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	accessToken  string
	language     string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		accessToken:  cfg.AccessToken,
		language:     cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET request and returns the body
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" && c.accessToken == "" {
		query.Set("api_key", c.apiKey)
	}
	if c.language != "" && query.Get("language") == "" {
		query.Set("language", c.language)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	// Never log the api_key query parameter
	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, domain.ErrRemoteNotFound)
	}

	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
		c.logger.Error("tmdb request error", "status", resp.StatusCode, "message", apiErr.StatusMessage)
		return nil, fmt.Errorf("tmdb: %s (status %d)", apiErr.StatusMessage, resp.StatusCode)
	}
	c.logger.Error("tmdb request error", "status", resp.StatusCode)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
	return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetShow returns show details with season summaries
func (c *Client) GetShow(ctx context.Context, tmdbID int64) (*domain.RemoteShow, error) {
	var details ShowDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d", tmdbID), nil, &details); err != nil {
		return nil, err
	}
	return MapRemoteShow(details), nil
}

// GetShowImages returns posters, backdrops and logos for a show. TMDB filters
// images by language when one is set, so ask for every language.
func (c *Client) GetShowImages(ctx context.Context, tmdbID int64) ([]domain.ShowImage, error) {
	query := url.Values{}
	query.Set("include_image_language", "en,null")
	if c.language != "" {
		lang := strings.SplitN(c.language, "-", 2)[0]
		if lang != "en" {
			query.Set("include_image_language", lang+",en,null")
		}
	}

	var resp ImagesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d/images", tmdbID), query, &resp); err != nil {
		return nil, err
	}
	return MapImages(resp), nil
}

// GetSeason returns a season with its episodes
func (c *Client) GetSeason(ctx context.Context, tmdbID int64, number int) (*domain.Season, error) {
	var details SeasonDetails
	path := fmt.Sprintf("/tv/%d/season/%d", tmdbID, number)
	if err := c.getJSON(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return MapSeason(details), nil
}

// SearchShows searches TV shows by title
func (c *Client) SearchShows(ctx context.Context, query string, page int) ([]domain.Show, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(max(page, 1)))

	var resp PagedShows
	if err := c.getJSON(ctx, "/search/tv", q, &resp); err != nil {
		return nil, err
	}
	return MapShowSummaries(resp.Results), nil
}

// PopularShows returns the popular shows list
func (c *Client) PopularShows(ctx context.Context, page int) ([]domain.Show, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))

	var resp PagedShows
	if err := c.getJSON(ctx, "/tv/popular", q, &resp); err != nil {
		return nil, err
	}
	return MapShowSummaries(resp.Results), nil
}

// ImageURL builds a full image URL for a provider path. size is a TMDB size
// name such as "w342" or "original".
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return c.imageBaseURL + "/" + size + path
}

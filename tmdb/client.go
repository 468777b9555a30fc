package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the TMDB v3 API root
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultImageBase serves posters at 500px width
const DefaultImageBase = "https://image.tmdb.org/t/p/w500"

// Client represents a TMDB API client
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	language   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client. Either apiKey or a bearer token
// (WithBearerToken) must be provided.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL %q: %v", ErrInvalidConfig, baseURL, err)
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" && client.token == "" {
		return nil, fmt.Errorf("%w: tmdb API key or token is required", ErrInvalidConfig)
	}

	return client, nil
}

// doRequest performs an authenticated GET and decodes the JSON body into out
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if c.language != "" && !params.Has("language") {
		params.Set("language", c.language)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, strings.TrimLeft(endpoint, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("TMDB request")

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
		var status statusResponse
		if json.Unmarshal(body, &status) == nil && status.StatusMessage != "" {
			apiErr.Message = status.StatusMessage
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func pageParams(page int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}

// TestConnection verifies the base URL and credentials
func (c *Client) TestConnection(ctx context.Context) error {
	var cfg map[string]any
	return c.doRequest(ctx, "configuration", nil, &cfg)
}

// ListMovies fetches a page of the movie/{sort} listing
func (c *Client) ListMovies(ctx context.Context, sort string, page int) (*Page, error) {
	if !ValidSort(sort) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}

	var result Page
	if err := c.doRequest(ctx, "movie/"+sort, pageParams(page), &result); err != nil {
		return nil, fmt.Errorf("failed to list %s movies: %w", sort, err)
	}

	return &result, nil
}

// DiscoverMovies fetches discover/movie results filtered by genre
func (c *Client) DiscoverMovies(ctx context.Context, genreID, page int) (*Page, error) {
	params := pageParams(page)
	if genreID > 0 {
		params.Set("with_genres", strconv.Itoa(genreID))
	} else {
		params.Set("with_genres", "")
	}

	var result Page
	if err := c.doRequest(ctx, "discover/movie", params, &result); err != nil {
		return nil, fmt.Errorf("failed to discover movies for genre %d: %w", genreID, err)
	}

	return &result, nil
}

// SearchMovies fetches search/movie results for a search term
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := pageParams(page)
	params.Set("query", query)

	var result Page
	if err := c.doRequest(ctx, "search/movie", params, &result); err != nil {
		return nil, fmt.Errorf("failed to search movies for %q: %w", query, err)
	}

	return &result, nil
}

// GetMovie fetches the details of a single movie
func (c *Client) GetMovie(ctx context.Context, id int64) (*MovieDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: movie id %d", ErrNotFound, id)
	}

	var details MovieDetails
	if err := c.doRequest(ctx, "movie/"+strconv.FormatInt(id, 10), nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}

	return &details, nil
}

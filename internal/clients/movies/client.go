// Package movies provides a client for the TMDB genre and discovery APIs.
package movies

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

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	DefaultTimeout = 10 * time.Second

	// DefaultLimit is the discovery result count when the caller asks for
	// nothing specific.
	DefaultLimit = 5
)

// Client implements the MoviesClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new TMDB client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request with the API key applied.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, apiKey string, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("endpoint", endpoint).Msg("TMDB request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return clients.Upstream(resp.StatusCode, endpoint, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}
	return nil
}

// Genres lists the movie genres as (id, name) pairs.
func (c *Client) Genres(ctx context.Context, apiKey string) ([]models.Genre, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var data struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", params, apiKey, &data); err != nil {
		return nil, err
	}
	return data.Genres, nil
}

// Discover returns the most popular movies matching the query, first page
// only, truncated to the query limit.
func (c *Client) Discover(ctx context.Context, apiKey string, query interfaces.MovieQuery) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")

	if len(query.GenreIDs) > 0 {
		ids := make([]string, len(query.GenreIDs))
		for i, id := range query.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if query.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(query.Year))
	}
	if query.Language != "" && query.Language != "Any" {
		params.Set("with_original_language", query.Language)
	}

	var data struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := c.get(ctx, "/discover/movie", params, apiKey, &data); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(data.Results) > limit {
		data.Results = data.Results[:limit]
	}
	return data.Results, nil
}

// Ensure Client implements MoviesClient
var _ interfaces.MoviesClient = (*Client)(nil)

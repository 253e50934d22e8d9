// Package news provides a client for the mediastack headlines API.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL = "http://api.mediastack.com/v1"
	DefaultTimeout = 10 * time.Second

	// DefaultCountry is the fixed country filter for today's headlines.
	DefaultCountry = "in"

	// DefaultLimit is the headline count when the caller does not ask.
	DefaultLimit = 10
)

// Client implements the NewsClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	now        func() time.Time
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

// WithClock overrides the clock used for "today". Tests only.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new mediastack client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type newsResponse struct {
	Data  []newsItem `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type newsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Country     string `json:"country"`
	PublishedAt string `json:"published_at"`
}

// TodayNews fetches today's headlines. An upstream error field propagates
// loudly; this adapter never silently degrades to an empty list.
func (c *Client) TodayNews(ctx context.Context, apiKey string, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("access_key", apiKey)
	params.Set("countries", DefaultCountry)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("date", c.now().UTC().Format("2006-01-02"))

	reqURL := fmt.Sprintf("%s/news?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Int("limit", limit).Msg("News API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.WrapTransport(err, "/news")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, clients.Upstream(resp.StatusCode, "/news", string(body))
	}

	var data newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, clients.Upstream(resp.StatusCode, "/news", "malformed payload: "+err.Error())
	}

	if data.Error != nil {
		return nil, clients.Upstream(resp.StatusCode, "/news", data.Error.Message)
	}
	if len(data.Data) == 0 {
		return nil, clients.NoData("/news", "no articles for today")
	}

	articles := make([]models.NewsArticle, 0, len(data.Data))
	for _, item := range data.Data {
		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			Source:      item.Source,
			Image:       item.Image,
			Category:    item.Category,
			Country:     item.Country,
			PublishedAt: item.PublishedAt,
		})
	}
	return articles, nil
}

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)

// Package stocks provides a client for daily close-price history using the
// Yahoo Finance chart API.
package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	DefaultTimeout = 15 * time.Second

	// DefaultLookbackDays is the fixed advice window.
	DefaultLookbackDays = 30
)

// Client implements the StockClient interface
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

// NewClient creates a new stock history client
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

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCloses fetches an ordered daily close series for a ticker over the
// given lookback. An empty series is NoData, not a transport failure.
func (c *Client) DailyCloses(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if days <= 0 {
		days = DefaultLookbackDays
	}

	params := url.Values{}
	params.Set("range", fmt.Sprintf("%dd", days))
	params.Set("interval", "1d")

	endpoint := "/v8/finance/chart/" + url.PathEscape(symbol)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "dayplan-server")

	c.logger.Debug().Str("symbol", symbol).Int("days", days).Msg("Stock chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, clients.Upstream(resp.StatusCode, endpoint, string(body))
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}

	if data.Chart.Error != nil {
		return nil, clients.Upstream(resp.StatusCode, endpoint, data.Chart.Error.Description)
	}
	if len(data.Chart.Result) == 0 {
		return nil, clients.NoData(endpoint, "no stock data found")
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, clients.NoData(endpoint, "no stock data found")
	}

	closes := result.Indicators.Quote[0].Close
	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // market holidays leave null closes
		}
		series = append(series, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Value: *closes[i],
		})
	}

	if len(series) == 0 {
		return nil, clients.NoData(endpoint, "no stock data found")
	}

	return series, nil
}

// Ensure Client implements StockClient
var _ interfaces.StockClient = (*Client)(nil)

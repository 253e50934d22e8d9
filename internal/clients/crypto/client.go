// Package crypto provides a client for the CoinGecko market chart API.
package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second; the public tier throttles hard

	// DefaultLookbackDays is the fixed advice window.
	DefaultLookbackDays = 30
)

// coinIDs maps common ticker symbols to CoinGecko coin ids. Unknown
// symbols fall back to the lowercased symbol itself.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"SOL":  "solana",
	"DOGE": "dogecoin",
}

// coinNames is the reverse of coinIDs for display.
var coinNames = func() map[string]string {
	m := make(map[string]string, len(coinIDs))
	for sym, id := range coinIDs {
		m[id] = sym
	}
	return m
}()

// CoinID resolves a ticker symbol to a CoinGecko coin id.
func CoinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return id
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}

// CoinName returns the display symbol for a coin id, or the upper-cased id.
func CoinName(coinID string) string {
	if name, ok := coinNames[coinID]; ok {
		return name
	}
	return strings.ToUpper(coinID)
}

// Client implements the CryptoClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new CoinGecko client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// MarketChart fetches the USD price series for a coin id over the given
// lookback window.
func (c *Client) MarketChart(ctx context.Context, coinID string, days int) (models.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if days <= 0 {
		days = DefaultLookbackDays
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))

	endpoint := "/coins/" + url.PathEscape(coinID) + "/market_chart"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("coin", coinID).Int("days", days).Msg("Crypto market chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, clients.Upstream(resp.StatusCode, endpoint, string(body))
	}

	var data marketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}

	if len(data.Prices) == 0 {
		return nil, clients.NoData(endpoint, "crypto data not available")
	}

	series := make(models.PriceSeries, 0, len(data.Prices))
	for _, pair := range data.Prices {
		if len(pair) < 2 {
			continue
		}
		// upstream timestamps are epoch milliseconds
		series = append(series, models.PricePoint{
			Date:  time.UnixMilli(int64(pair[0])).UTC(),
			Value: pair[1],
		})
	}

	if len(series) == 0 {
		return nil, clients.NoData(endpoint, "crypto data not available")
	}

	return series, nil
}

// Ensure Client implements CryptoClient
var _ interfaces.CryptoClient = (*Client)(nil)

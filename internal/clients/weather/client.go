// Package weather provides a client for the OpenWeatherMap current
// weather API plus IP-based city resolution.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL  = "http://api.openweathermap.org/data/2.5"
	DefaultGeoIPURL = "http://ip-api.com"
	DefaultTimeout  = 10 * time.Second

	// DefaultCity is used when IP geolocation yields nothing.
	DefaultCity = "London"
)

// Client implements the WeatherClient interface
type Client struct {
	baseURL    string
	geoipURL   string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the weather API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithGeoIPURL sets the IP geolocation base URL
func WithGeoIPURL(geoipURL string) ClientOption {
	return func(c *Client) {
		c.geoipURL = geoipURL
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

// NewClient creates a new weather client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		geoipURL: DefaultGeoIPURL,
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

type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentWeather fetches current conditions for a city in metric units.
func (c *Client) CurrentWeather(ctx context.Context, city, apiKey string) (*models.WeatherReport, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", apiKey)
	params.Set("units", "metric")

	reqURL := fmt.Sprintf("%s/weather?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("city", city).Msg("Weather API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.WrapTransport(err, "/weather")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, clients.Upstream(resp.StatusCode, "/weather", string(body))
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, clients.Upstream(resp.StatusCode, "/weather", "malformed payload: "+err.Error())
	}

	condition := "unknown"
	if len(data.Weather) > 0 && data.Weather[0].Description != "" {
		condition = data.Weather[0].Description
	}

	return &models.WeatherReport{
		City:      city,
		Temp:      data.Main.Temp,
		FeelsLike: data.Main.FeelsLike,
		Humidity:  data.Main.Humidity,
		Pressure:  data.Main.Pressure,
		Condition: condition,
		WindSpeed: data.Wind.Speed,
		Sunrise:   data.Sys.Sunrise,
		Sunset:    data.Sys.Sunset,
	}, nil
}

// CurrentCity resolves the caller's city from the server's public IP.
// Failures are soft: callers fall back to DefaultCity on "".
func (c *Client) CurrentCity(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geoipURL+"/json", nil)
	if err != nil {
		return "", nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("IP geolocation failed")
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var data struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", nil
	}
	return data.City, nil
}

// Ensure Client implements WeatherClient
var _ interfaces.WeatherClient = (*Client)(nil)

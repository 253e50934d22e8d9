// Package places provides a client for Google geolocation and nearby
// place search, with great-circle distances computed per result.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL     = "https://maps.googleapis.com"
	DefaultGeolocation = "https://www.googleapis.com"
	DefaultTimeout     = 10 * time.Second

	// DefaultRadiusMeters bounds every nearby search.
	DefaultRadiusMeters = 2000

	earthRadiusKm = 6371
)

// Haversine returns the great-circle distance between two points in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Pow(math.Sin(dlon/2), 2)
	return 1000 * 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Client implements the PlacesClient interface
type Client struct {
	baseURL        string
	geolocationURL string
	httpClient     *http.Client
	logger         *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the maps API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithGeolocationURL sets the geolocation API base URL
func WithGeolocationURL(geolocationURL string) ClientOption {
	return func(c *Client) {
		c.geolocationURL = geolocationURL
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

// NewClient creates a new places client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		geolocationURL: DefaultGeolocation,
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

// Geolocate resolves the caller's coordinates from the API key alone
// (IP-based when no radio data is supplied).
func (c *Client) Geolocate(ctx context.Context, apiKey string) (float64, float64, error) {
	endpoint := "/geolocation/v1/geolocate"
	reqURL := fmt.Sprintf("%s%s?key=%s", c.geolocationURL, endpoint, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, 0, clients.Upstream(resp.StatusCode, endpoint, string(body))
	}

	var data struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, 0, clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}

	if data.Location.Lat == 0 && data.Location.Lng == 0 {
		return 0, 0, clients.NoData(endpoint, "could not detect location")
	}
	return data.Location.Lat, data.Location.Lng, nil
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		PlaceID  string `json:"place_id"`
		Vicinity string `json:"vicinity"`
		Rating   float64 `json:"rating"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// Nearby searches for places of one type within the fixed radius. A
// non-"OK" upstream status yields an empty list, not an error.
func (c *Client) Nearby(ctx context.Context, apiKey string, lat, lng float64, placeType string) ([]models.Place, error) {
	endpoint := "/maps/api/place/nearbysearch/json"

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", DefaultRadiusMeters))
	params.Set("type", placeType)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("type", placeType).Msg("Nearby search request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, clients.Upstream(resp.StatusCode, endpoint, string(body))
	}

	var data nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}

	if data.Status != "OK" {
		c.logger.Debug().Str("status", data.Status).Msg("Nearby search returned no results")
		return nil, nil
	}

	places := make([]models.Place, 0, len(data.Results))
	for _, r := range data.Results {
		p := models.Place{
			Name:     r.Name,
			Lat:      r.Geometry.Location.Lat,
			Lon:      r.Geometry.Location.Lng,
			Rating:   r.Rating,
			Address:  r.Vicinity,
			Type:     placeType,
			Distance: Haversine(lat, lng, r.Geometry.Location.Lat, r.Geometry.Location.Lng),
		}
		if p.Address == "" {
			p.Address = "No address"
		}
		if len(r.Photos) > 0 {
			p.Photo = r.Photos[0].PhotoReference
		}
		if r.PlaceID != "" {
			p.URL = "https://www.google.com/maps/place/?q=place_id:" + r.PlaceID
		}
		places = append(places, p)
	}
	return places, nil
}

// Ensure Client implements PlacesClient
var _ interfaces.PlacesClient = (*Client)(nil)

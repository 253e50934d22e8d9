package interfaces

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/models"
)

// WeatherClient fetches current conditions for a city.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, city, apiKey string) (*models.WeatherReport, error)
	// CurrentCity resolves the caller's city via IP geolocation. Returns ""
	// when resolution yields nothing; callers fall back to a default city.
	CurrentCity(ctx context.Context) (string, error)
}

// StockClient fetches an ordered daily close-price series for a ticker.
type StockClient interface {
	DailyCloses(ctx context.Context, symbol string, days int) (models.PriceSeries, error)
}

// CryptoClient fetches an ordered (timestamp, price) series for a coin id.
type CryptoClient interface {
	MarketChart(ctx context.Context, coinID string, days int) (models.PriceSeries, error)
}

// MovieQuery filters a discovery request.
type MovieQuery struct {
	GenreIDs []int
	Year     int
	Language string
	Limit    int
}

// MoviesClient lists genres and discovers movies by popularity.
type MoviesClient interface {
	Genres(ctx context.Context, apiKey string) ([]models.Genre, error)
	// Discover returns raw upstream movie objects, first page only,
	// truncated to the query limit.
	Discover(ctx context.Context, apiKey string, query MovieQuery) ([]json.RawMessage, error)
}

// NewsClient fetches today's headlines.
type NewsClient interface {
	TodayNews(ctx context.Context, apiKey string, limit int) ([]models.NewsArticle, error)
}

// PlacesClient geolocates by API key and searches nearby places.
type PlacesClient interface {
	Geolocate(ctx context.Context, apiKey string) (lat, lng float64, err error)
	Nearby(ctx context.Context, apiKey string, lat, lng float64, placeType string) ([]models.Place, error)
}

// GenAIClient generates text from a prompt with one model credential.
type GenAIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GenAIFactory constructs a GenAIClient for a per-user API key.
type GenAIFactory func(ctx context.Context, apiKey string) (GenAIClient, error)

// MailClient reads and sends mail on behalf of an authorized user.
type MailClient interface {
	// RecentMessages returns messages from the last 48 hours.
	RecentMessages(ctx context.Context, token *oauth2.Token) ([]*models.EmailMessage, error)
	// Send delivers a plain-text message and returns the upstream message id.
	Send(ctx context.Context, token *oauth2.Token, to, subject, body string) (string, error)
}

// CalendarClient appends events to the user's primary calendar.
type CalendarClient interface {
	InsertTask(ctx context.Context, token *oauth2.Token, task *models.CalendarTask) error
}

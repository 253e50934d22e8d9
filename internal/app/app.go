// Package app wires configuration, storage, clients and services into
// one initialized application core shared by the server entry point and
// the tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/dayplan/internal/advice"
	"github.com/bobmcallan/dayplan/internal/clients/crypto"
	"github.com/bobmcallan/dayplan/internal/clients/gemini"
	"github.com/bobmcallan/dayplan/internal/clients/google"
	"github.com/bobmcallan/dayplan/internal/clients/movies"
	"github.com/bobmcallan/dayplan/internal/clients/news"
	"github.com/bobmcallan/dayplan/internal/clients/places"
	"github.com/bobmcallan/dayplan/internal/clients/stocks"
	"github.com/bobmcallan/dayplan/internal/clients/weather"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/storage/surrealdb"
	"github.com/bobmcallan/dayplan/internal/tokencache"
)

// App holds all initialized clients, stores and services.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	WeatherClient  interfaces.WeatherClient
	StockClient    interfaces.StockClient
	CryptoClient   interfaces.CryptoClient
	MoviesClient   interfaces.MoviesClient
	NewsClient     interfaces.NewsClient
	PlacesClient   interfaces.PlacesClient
	MailClient     interfaces.MailClient
	CalendarClient interfaces.CalendarClient

	TokenCache   interfaces.TokenCache
	AdviceEngine interfaces.AdviceEngine

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services from configuration.
// configPath may be empty, in which case the default resolution logic is
// used: DAYPLAN_CONFIG, then dayplan.toml next to the binary, then
// config/dayplan.toml.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("DAYPLAN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "dayplan.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/dayplan.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app := NewAppWithDeps(config, logger, storageManager)
	app.StartupTime = startupStart
	return app, nil
}

// NewAppWithDeps builds the client and service graph on top of an
// already-initialized storage manager. Tests use this with in-memory
// stores.
func NewAppWithDeps(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager) *App {
	weatherClient := weather.NewClient(
		weather.WithBaseURL(config.Clients.Weather.BaseURL),
		weather.WithGeoIPURL(config.Clients.GeoIP.BaseURL),
		weather.WithTimeout(config.Clients.Weather.GetTimeout()),
		weather.WithLogger(logger),
	)

	stockClient := stocks.NewClient(
		stocks.WithBaseURL(config.Clients.Stocks.BaseURL),
		stocks.WithTimeout(config.Clients.Stocks.GetTimeout()),
		stocks.WithLogger(logger),
	)

	cryptoClient := crypto.NewClient(
		crypto.WithBaseURL(config.Clients.Crypto.BaseURL),
		crypto.WithTimeout(config.Clients.Crypto.GetTimeout()),
		crypto.WithRateLimit(config.Clients.Crypto.RateLimit),
		crypto.WithLogger(logger),
	)

	moviesClient := movies.NewClient(
		movies.WithBaseURL(config.Clients.Movies.BaseURL),
		movies.WithTimeout(config.Clients.Movies.GetTimeout()),
		movies.WithLogger(logger),
	)

	newsClient := news.NewClient(
		news.WithBaseURL(config.Clients.News.BaseURL),
		news.WithTimeout(config.Clients.News.GetTimeout()),
		news.WithLogger(logger),
	)

	placesClient := places.NewClient(
		places.WithBaseURL(config.Clients.Places.BaseURL),
		places.WithTimeout(config.Clients.Places.GetTimeout()),
		places.WithLogger(logger),
	)

	googleClient := google.NewClient(
		google.WithBaseURL(config.Clients.GoogleAPI.BaseURL),
		google.WithTimeout(config.Clients.GoogleAPI.GetTimeout()),
		google.WithLogger(logger),
	)

	tokenCache := tokencache.New(
		storageManager.UserStore(),
		config.Auth.RedirectURL,
		tokencache.WithLogger(logger),
	)

	adviceEngine := advice.NewEngine(
		gemini.Factory(config.Clients.Gemini.Model, logger),
		logger,
	)

	return &App{
		Config:  config,
		Logger:  logger,
		Storage: storageManager,

		WeatherClient:  weatherClient,
		StockClient:    stockClient,
		CryptoClient:   cryptoClient,
		MoviesClient:   moviesClient,
		NewsClient:     newsClient,
		PlacesClient:   placesClient,
		MailClient:     googleClient,
		CalendarClient: googleClient,

		TokenCache:   tokenCache,
		AdviceEngine: adviceEngine,

		StartupTime: time.Now(),
	}
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}

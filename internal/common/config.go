// Package common provides shared utilities for dayplan
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for dayplan
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations. API keys are per-user and
// live on the user record; only base URLs and timeouts are configured here.
type ClientsConfig struct {
	Weather   EndpointConfig `toml:"weather"`
	GeoIP     EndpointConfig `toml:"geoip"`
	Stocks    EndpointConfig `toml:"stocks"`
	Crypto    CryptoConfig   `toml:"crypto"`
	Movies    EndpointConfig `toml:"movies"`
	News      EndpointConfig `toml:"news"`
	Places    EndpointConfig `toml:"places"`
	Gemini    GeminiConfig   `toml:"gemini"`
	GoogleAPI EndpointConfig `toml:"google_api"`
}

// EndpointConfig holds base URL and timeout for one upstream API.
type EndpointConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EndpointConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CryptoConfig holds the crypto market API configuration.
type CryptoConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the timeout duration
func (c *CryptoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini model configuration. The API key itself is a
// per-user credential slot.
type GeminiConfig struct {
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// AuthConfig holds session token configuration and the OAuth redirect base.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
	RedirectURL string `toml:"redirect_url"` // base URL for OAuth callbacks
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000",
			Username:  "root",
			Password:  "root",
			Namespace: "dayplan",
			Database:  "dayplan",
		},
		Clients: ClientsConfig{
			Weather: EndpointConfig{
				BaseURL: "http://api.openweathermap.org/data/2.5",
				Timeout: "10s",
			},
			GeoIP: EndpointConfig{
				BaseURL: "http://ip-api.com",
				Timeout: "10s",
			},
			Stocks: EndpointConfig{
				BaseURL: "https://query1.finance.yahoo.com",
				Timeout: "15s",
			},
			Crypto: CryptoConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				Timeout:   "15s",
				RateLimit: 5,
			},
			Movies: EndpointConfig{
				BaseURL: "https://api.themoviedb.org/3",
				Timeout: "10s",
			},
			News: EndpointConfig{
				BaseURL: "http://api.mediastack.com/v1",
				Timeout: "10s",
			},
			Places: EndpointConfig{
				BaseURL: "https://maps.googleapis.com",
				Timeout: "10s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "15s",
			},
			GoogleAPI: EndpointConfig{
				BaseURL: "https://www.googleapis.com",
				Timeout: "15s",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
			RedirectURL: "http://localhost:8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DAYPLAN_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("DAYPLAN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("DAYPLAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("DAYPLAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("DAYPLAN_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("DAYPLAN_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("DAYPLAN_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}
	if ns := os.Getenv("DAYPLAN_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("DAYPLAN_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}

	if v := os.Getenv("DAYPLAN_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("DAYPLAN_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
	if v := os.Getenv("DAYPLAN_AUTH_REDIRECT_URL"); v != "" {
		config.Auth.RedirectURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := c.Environment
	return env == "production" || env == "prod"
}

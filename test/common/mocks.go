// Package common provides shared test infrastructure
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// MemoryUserStore implements interfaces.UserStore in memory
type MemoryUserStore struct {
	mu    sync.Mutex
	Users map[string]*models.User
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{Users: make(map[string]*models.User)}
}

// Seed inserts a user without going through SaveUser bookkeeping
func (s *MemoryUserStore) Seed(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.Users[user.Email] = &clone
}

func (s *MemoryUserStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryUserStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.Users[user.Email] = &clone
	return nil
}

func (s *MemoryUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *MemoryUserStore) GetCredential(ctx context.Context, email string, slot models.Slot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return "", interfaces.ErrNotFound
	}
	return user.Credential(slot), nil
}

func (s *MemoryUserStore) SetCredential(ctx context.Context, email string, slot models.Slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.SetCredential(slot, value)
	return nil
}

func (s *MemoryUserStore) SetToken(ctx context.Context, email string, provider models.TokenProvider, bundle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.SetToken(provider, bundle)
	return nil
}

func (s *MemoryUserStore) ClearToken(ctx context.Context, email string, provider models.TokenProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[email]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.SetToken(provider, "")
	return nil
}

// MemoryExpenseStore implements interfaces.ExpenseStore in memory
type MemoryExpenseStore struct {
	mu       sync.Mutex
	Expenses []models.Expense
}

// NewMemoryExpenseStore creates an empty in-memory expense store
func NewMemoryExpenseStore() *MemoryExpenseStore {
	return &MemoryExpenseStore{}
}

func (s *MemoryExpenseStore) AddExpense(ctx context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expenses = append(s.Expenses, *expense)
	return nil
}

func (s *MemoryExpenseStore) ListExpenses(ctx context.Context, email, from, to string) ([]*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Expense
	for i := range s.Expenses {
		e := s.Expenses[i]
		if e.Email != email {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		result = append(result, &e)
	}
	return result, nil
}

func (s *MemoryExpenseStore) ExpenseDateRange(ctx context.Context, email string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var min, max string
	for _, e := range s.Expenses {
		if e.Email != email {
			continue
		}
		if min == "" || e.Date < min {
			min = e.Date
		}
		if max == "" || e.Date > max {
			max = e.Date
		}
	}
	return min, max, nil
}

// MemoryStorageManager bundles the in-memory stores
type MemoryStorageManager struct {
	Users    *MemoryUserStore
	Expenses *MemoryExpenseStore
}

// NewMemoryStorageManager creates a storage manager backed by memory
func NewMemoryStorageManager() *MemoryStorageManager {
	return &MemoryStorageManager{
		Users:    NewMemoryUserStore(),
		Expenses: NewMemoryExpenseStore(),
	}
}

func (m *MemoryStorageManager) UserStore() interfaces.UserStore       { return m.Users }
func (m *MemoryStorageManager) ExpenseStore() interfaces.ExpenseStore { return m.Expenses }
func (m *MemoryStorageManager) Close() error                          { return nil }

// MockWeatherClient implements WeatherClient for testing
type MockWeatherClient struct {
	Report       *models.WeatherReport
	City         string
	Err          error
	WeatherCalls int
	CityCalls    int
}

// NewMockWeatherClient creates a mock weather client with sample data
func NewMockWeatherClient() *MockWeatherClient {
	return &MockWeatherClient{
		Report: &models.WeatherReport{
			City:      "London",
			Temp:      18.5,
			FeelsLike: 17.2,
			Humidity:  64,
			Pressure:  1012,
			Condition: "scattered clouds",
			WindSpeed: 4.1,
		},
		City: "London",
	}
}

func (m *MockWeatherClient) CurrentWeather(ctx context.Context, city, apiKey string) (*models.WeatherReport, error) {
	m.WeatherCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	report := *m.Report
	if city != "" {
		report.City = city
	}
	return &report, nil
}

func (m *MockWeatherClient) CurrentCity(ctx context.Context) (string, error) {
	m.CityCalls++
	return m.City, nil
}

// MockStockClient implements StockClient for testing
type MockStockClient struct {
	Series map[string]models.PriceSeries
	Err    error
	Calls  int
}

// NewMockStockClient creates a mock stock client
func NewMockStockClient() *MockStockClient {
	return &MockStockClient{Series: make(map[string]models.PriceSeries)}
}

func (m *MockStockClient) DailyCloses(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if series, ok := m.Series[symbol]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("no data for %s", symbol)
}

// MockCryptoClient implements CryptoClient for testing
type MockCryptoClient struct {
	Series map[string]models.PriceSeries
	Err    error
	Calls  int
}

// NewMockCryptoClient creates a mock crypto client
func NewMockCryptoClient() *MockCryptoClient {
	return &MockCryptoClient{Series: make(map[string]models.PriceSeries)}
}

func (m *MockCryptoClient) MarketChart(ctx context.Context, coinID string, days int) (models.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if series, ok := m.Series[coinID]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("no data for %s", coinID)
}

// MockMoviesClient implements MoviesClient for testing
type MockMoviesClient struct {
	GenreList []models.Genre
	Movies    []json.RawMessage
	Err       error
}

// NewMockMoviesClient creates a mock movies client with sample genres
func NewMockMoviesClient() *MockMoviesClient {
	return &MockMoviesClient{
		GenreList: []models.Genre{
			{ID: 28, Name: "Action"},
			{ID: 35, Name: "Comedy"},
		},
		Movies: []json.RawMessage{
			json.RawMessage(`{"id":1,"title":"Sample Movie"}`),
		},
	}
}

func (m *MockMoviesClient) Genres(ctx context.Context, apiKey string) ([]models.Genre, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.GenreList, nil
}

func (m *MockMoviesClient) Discover(ctx context.Context, apiKey string, query interfaces.MovieQuery) ([]json.RawMessage, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Movies, nil
}

// MockNewsClient implements NewsClient for testing
type MockNewsClient struct {
	Articles []models.NewsArticle
	Err      error
}

// NewMockNewsClient creates a mock news client
func NewMockNewsClient() *MockNewsClient {
	return &MockNewsClient{
		Articles: []models.NewsArticle{
			{Title: "Sample headline", Source: "sample", URL: "https://example.com/1"},
		},
	}
}

func (m *MockNewsClient) TodayNews(ctx context.Context, apiKey string, limit int) ([]models.NewsArticle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Articles, nil
}

// MockPlacesClient implements PlacesClient for testing
type MockPlacesClient struct {
	Lat    float64
	Lon    float64
	Places map[string][]models.Place
	Err    error
}

// NewMockPlacesClient creates a mock places client
func NewMockPlacesClient() *MockPlacesClient {
	return &MockPlacesClient{
		Lat:    51.5074,
		Lon:    -0.1278,
		Places: make(map[string][]models.Place),
	}
}

func (m *MockPlacesClient) Geolocate(ctx context.Context, apiKey string) (float64, float64, error) {
	if m.Err != nil {
		return 0, 0, m.Err
	}
	return m.Lat, m.Lon, nil
}

func (m *MockPlacesClient) Nearby(ctx context.Context, apiKey string, lat, lon float64, placeType string) ([]models.Place, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Places[placeType], nil
}

// FakeGenAIClient implements GenAIClient with canned responses
type FakeGenAIClient struct {
	Responses []string
	Err       error
	Calls     int
	Prompts   []string
}

func (f *FakeGenAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.Calls++
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	idx := f.Calls - 1
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	return f.Responses[idx], nil
}

// FakeGenAIFactory returns a factory producing the given fake client.
// The factory records the API keys it was invoked with.
type FakeGenAIFactory struct {
	Client *FakeGenAIClient
	Err    error
	Keys   []string
}

func (f *FakeGenAIFactory) Factory() interfaces.GenAIFactory {
	return func(ctx context.Context, apiKey string) (interfaces.GenAIClient, error) {
		f.Keys = append(f.Keys, apiKey)
		if f.Err != nil {
			return nil, f.Err
		}
		return f.Client, nil
	}
}

// MockMailClient implements MailClient for testing
type MockMailClient struct {
	Messages []*models.EmailMessage
	SentIDs  []string
	SendErr  error
	Sent     []SentMail
}

// SentMail records a Send call
type SentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *MockMailClient) RecentMessages(ctx context.Context, token *oauth2.Token) ([]*models.EmailMessage, error) {
	return m.Messages, nil
}

func (m *MockMailClient) Send(ctx context.Context, token *oauth2.Token, to, subject, body string) (string, error) {
	if m.SendErr != nil {
		return "", m.SendErr
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	id := fmt.Sprintf("msg-%d", len(m.Sent))
	m.SentIDs = append(m.SentIDs, id)
	return id, nil
}

// MockCalendarClient implements CalendarClient for testing
type MockCalendarClient struct {
	Inserted  []models.CalendarTask
	InsertErr error
}

func (m *MockCalendarClient) InsertTask(ctx context.Context, token *oauth2.Token, task *models.CalendarTask) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, *task)
	return nil
}

// Compile-time interface checks
var (
	_ interfaces.UserStore      = (*MemoryUserStore)(nil)
	_ interfaces.ExpenseStore   = (*MemoryExpenseStore)(nil)
	_ interfaces.StorageManager = (*MemoryStorageManager)(nil)
	_ interfaces.WeatherClient  = (*MockWeatherClient)(nil)
	_ interfaces.StockClient    = (*MockStockClient)(nil)
	_ interfaces.CryptoClient   = (*MockCryptoClient)(nil)
	_ interfaces.MoviesClient   = (*MockMoviesClient)(nil)
	_ interfaces.NewsClient     = (*MockNewsClient)(nil)
	_ interfaces.PlacesClient   = (*MockPlacesClient)(nil)
	_ interfaces.GenAIClient    = (*FakeGenAIClient)(nil)
	_ interfaces.MailClient     = (*MockMailClient)(nil)
	_ interfaces.CalendarClient = (*MockCalendarClient)(nil)
)

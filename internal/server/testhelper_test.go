package server

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/advice"
	"github.com/bobmcallan/dayplan/internal/app"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/models"
	"github.com/bobmcallan/dayplan/internal/tokencache"
	testcommon "github.com/bobmcallan/dayplan/test/common"
)

const testUserEmail = "alice@example.com"

// testOAuthClientSecret is a structurally valid Google web-app client
// secret for exercising the consent-URL path.
const testOAuthClientSecret = `{
  "web": {
    "client_id": "test-client.apps.googleusercontent.com",
    "project_id": "test-project",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost:8080/api/oauth/calendar/callback"]
  }
}`

// testEnv bundles a server wired to in-memory storage and mock clients.
type testEnv struct {
	Server  *Server
	App     *app.App
	Storage *testcommon.MemoryStorageManager

	Weather  *testcommon.MockWeatherClient
	Stocks   *testcommon.MockStockClient
	Crypto   *testcommon.MockCryptoClient
	Movies   *testcommon.MockMoviesClient
	News     *testcommon.MockNewsClient
	Places   *testcommon.MockPlacesClient
	Mail     *testcommon.MockMailClient
	Calendar *testcommon.MockCalendarClient
	GenAI    *testcommon.FakeGenAIFactory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config := common.NewDefaultConfig()
	logger := common.NewSilentLogger()
	storage := testcommon.NewMemoryStorageManager()

	a := app.NewAppWithDeps(config, logger, storage)

	env := &testEnv{
		App:      a,
		Storage:  storage,
		Weather:  testcommon.NewMockWeatherClient(),
		Stocks:   testcommon.NewMockStockClient(),
		Crypto:   testcommon.NewMockCryptoClient(),
		Movies:   testcommon.NewMockMoviesClient(),
		News:     testcommon.NewMockNewsClient(),
		Places:   testcommon.NewMockPlacesClient(),
		Mail:     &testcommon.MockMailClient{},
		Calendar: &testcommon.MockCalendarClient{},
		GenAI:    &testcommon.FakeGenAIFactory{Client: &testcommon.FakeGenAIClient{}},
	}

	a.WeatherClient = env.Weather
	a.StockClient = env.Stocks
	a.CryptoClient = env.Crypto
	a.MoviesClient = env.Movies
	a.NewsClient = env.News
	a.PlacesClient = env.Places
	a.MailClient = env.Mail
	a.CalendarClient = env.Calendar
	a.AdviceEngine = advice.NewEngine(env.GenAI.Factory(), logger)
	a.TokenCache = tokencache.New(storage.UserStore(), config.Auth.RedirectURL, tokencache.WithLogger(logger))

	env.Server = NewServer(a)
	return env
}

// seedUser inserts a user directly and returns a session token for them.
func (e *testEnv) seedUser(t *testing.T, mutate ...func(*models.User)) string {
	t.Helper()

	hash, err := hashPassword("password-1")
	require.NoError(t, err)

	user := &models.User{
		Email:        testUserEmail,
		PasswordHash: hash,
	}
	for _, fn := range mutate {
		fn(user)
	}
	e.Storage.Users.Seed(user)

	token, err := signSessionToken(user.Email, e.App.Config)
	require.NoError(t, err)
	return token
}

// seedGrant stores a token bundle for the user under the given provider.
func (e *testEnv) seedGrant(t *testing.T, provider models.TokenProvider, token *oauth2.Token) {
	t.Helper()
	raw, err := json.Marshal(token)
	require.NoError(t, err)
	require.NoError(t, e.Storage.Users.SetToken(t.Context(), testUserEmail, provider, string(raw)))
}

func validGrant() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
	}
}

// doRequest runs a request through the full middleware chain and returns
// the recorder.
func (e *testEnv) doRequest(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.Server.Handler().ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func sampleSeries(values ...float64) models.PriceSeries {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	series := make(models.PriceSeries, 0, len(values))
	for i, v := range values {
		series = append(series, models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Value: v,
		})
	}
	return series
}

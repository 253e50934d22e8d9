package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/models"
)

func TestOAuthURLRequiresClientSecret(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/calendar/url", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["need_api"])
	assert.Equal(t, []interface{}{"client_secret_json"}, body["missing"])
}

func TestOAuthURLBuildsConsentLink(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.ClientSecret = testOAuthClientSecret
	})

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/calendar/url", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "calendar", body["provider"])

	authURL, _ := body["auth_url"].(string)
	require.NotEmpty(t, authURL)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "offline", parsed.Query().Get("access_type"))
	assert.Contains(t, parsed.Query().Get("scope"), "calendar.events")
	assert.NotEmpty(t, parsed.Query().Get("state"))
}

func TestOAuthURLUnknownProvider(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/dropbox/url", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthCallbackRejectsUpstreamError(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?error=access_denied", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "access_denied")
}

func TestOAuthCallbackRequiresCodeAndState(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?code=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?state=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthCallbackRejectsForgedState(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?code=abc&state=forged", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthCallbackRejectsWrongProviderState(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t)

	srv := env.Server
	state, err := srv.signOAuthState(testUserEmail, models.ProviderCalendar)
	require.NoError(t, err)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?code=abc&state="+url.QueryEscape(state), "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "invalid state")
}

func TestOAuthCallbackRejectsSessionTokenAsState(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	// A plain session JWT must not pass as an authorization state
	rec := env.doRequest(t, http.MethodGet, "/api/oauth/gmail/callback?code=abc&state="+url.QueryEscape(token), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthUnknownActionIs404(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/oauth/calendar/revoke", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

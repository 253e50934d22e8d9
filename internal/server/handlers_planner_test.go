package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/models"
)

func TestMovieGenresNeedsKey(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/movies/genres", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["need_api"])
	assert.Equal(t, []interface{}{"tmdb_api"}, body["missing"])
}

func TestMovieGenres(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.TMDBKey = "tk-1"
	})

	rec := env.doRequest(t, http.MethodGet, "/api/movies/genres", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	genres, ok := decodeBody(t, rec)["genres"].([]interface{})
	require.True(t, ok)
	require.Len(t, genres, 2)
	first := genres[0].(map[string]interface{})
	assert.Equal(t, "Action", first["name"])
}

func TestMovieDiscover(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.TMDBKey = "tk-1"
	})

	rec := env.doRequest(t, http.MethodPost, "/api/movies", token, map[string]interface{}{
		"genre_ids":  []int{28},
		"year":       2024,
		"num_movies": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	movies, ok := decodeBody(t, rec)["movies"].([]interface{})
	require.True(t, ok)
	require.Len(t, movies, 1)
	first := movies[0].(map[string]interface{})
	assert.Equal(t, "Sample Movie", first["title"])
}

func TestNews(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.NewsKey = "nk-1"
	})

	rec := env.doRequest(t, http.MethodGet, "/api/news", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	articles, ok := decodeBody(t, rec)["articles"].([]interface{})
	require.True(t, ok)
	require.Len(t, articles, 1)
}

func TestNewsNeedsKey(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/news", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["need_api"])
}

func TestNewsNoDataIsEmptyList(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.NewsKey = "nk-1"
	})
	env.News.Err = clients.NoData("news", "no articles")

	rec := env.doRequest(t, http.MethodGet, "/api/news", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	articles, ok := decodeBody(t, rec)["articles"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, articles)
}

func TestTravelDefaultsToRestaurants(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.MapsKey = "mk-1"
	})
	env.Places.Places["restaurant"] = []models.Place{
		{Name: "The Corner Table", Rating: 4.5},
	}
	env.Places.Places["museum"] = []models.Place{
		{Name: "City Museum", Rating: 4.8},
	}

	rec := env.doRequest(t, http.MethodGet, "/api/travel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, 51.5074, body["lat"])
	places, ok := body["places"].([]interface{})
	require.True(t, ok)
	require.Len(t, places, 1)
	first := places[0].(map[string]interface{})
	assert.Equal(t, "The Corner Table", first["name"])
}

func TestTravelMultiplePlaceTypes(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.MapsKey = "mk-1"
	})
	env.Places.Places["restaurant"] = []models.Place{{Name: "A"}}
	env.Places.Places["museum"] = []models.Place{{Name: "B"}}

	rec := env.doRequest(t, http.MethodGet, "/api/travel?place_types=restaurant,%20museum", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	places := decodeBody(t, rec)["places"].([]interface{})
	assert.Len(t, places, 2)
}

func TestTravelNeedsKey(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/travel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["need_api"])
	assert.Equal(t, []interface{}{"google_map_api"}, body["missing"])
}

func TestHoroscope(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.GeminiKey = "gk-1"
		u.ZodiacSign = "leo"
	})
	env.GenAI.Client.Responses = []string{"A good day for bold moves."}

	rec := env.doRequest(t, http.MethodGet, "/api/horoscope", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "leo", body["sign"])
	assert.Equal(t, "A good day for bold moves.", body["horoscope"])
}

func TestHoroscopeMissingPiecesListed(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodGet, "/api/horoscope", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["need_api"])
	assert.ElementsMatch(t,
		[]interface{}{"google_gemini_api_key", "zodiac_sign"},
		body["missing"])
}

func TestHoroscopeSavesSign(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodPost, "/api/horoscope", token, map[string]string{
		"zodiac_sign": "virgo",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := env.Storage.Users.GetUser(t.Context(), testUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "virgo", user.ZodiacSign)
}

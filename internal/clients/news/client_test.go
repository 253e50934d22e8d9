package news

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/clients"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
}

func TestTodayNews(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"access_key": r.URL.Query().Get("access_key"),
			"countries":  r.URL.Query().Get("countries"),
			"limit":      r.URL.Query().Get("limit"),
			"date":       r.URL.Query().Get("date"),
		}
		w.Write([]byte(`{
			"data": [
				{"title": "Headline one", "source": "wire", "url": "https://example.com/1", "published_at": "2025-06-15T06:00:00+00:00"},
				{"title": "Headline two", "source": "wire", "url": "https://example.com/2", "published_at": "2025-06-15T07:00:00+00:00"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithClock(fixedClock))
	articles, err := client.TodayNews(t.Context(), "nk-1", 5)
	require.NoError(t, err)

	assert.Equal(t, "nk-1", gotQuery["access_key"])
	assert.Equal(t, "in", gotQuery["countries"])
	assert.Equal(t, "5", gotQuery["limit"])
	assert.Equal(t, "2025-06-15", gotQuery["date"])

	require.Len(t, articles, 2)
	assert.Equal(t, "Headline one", articles[0].Title)
	assert.Equal(t, "wire", articles[0].Source)
}

func TestTodayNewsDefaultLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`{"data": [{"title": "x"}]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.TodayNews(t.Context(), "nk-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
}

func TestTodayNewsErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [], "error": {"code": "invalid_access_key", "message": "You have not supplied a valid API Access Key."}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.TodayNews(t.Context(), "bad", 5)
	require.Error(t, err)

	typed, ok := clients.AsError(err)
	require.True(t, ok)
	assert.Equal(t, clients.KindUpstream, typed.Kind)
	assert.Contains(t, typed.Message, "Access Key")
}

func TestTodayNewsEmptyIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.TodayNews(t.Context(), "nk-1", 5)
	assert.True(t, clients.IsNoData(err))
}

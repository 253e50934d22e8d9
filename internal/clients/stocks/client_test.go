package stocks

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/clients"
)

func TestDailyCloses(t *testing.T) {
	var gotPath, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1748736000, 1748822400, 1748908800],
					"indicators": {"quote": [{"close": [410.25, null, 402.31]}]}
				}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	series, err := client.DailyCloses(t.Context(), "msft", 30)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/MSFT", gotPath)
	assert.Equal(t, "30d", gotRange)

	// The null close (a market holiday) is skipped
	require.Len(t, series, 2)
	assert.Equal(t, 410.25, series[0].Value)
	assert.Equal(t, 402.31, series[1].Value)
	assert.True(t, series[0].Date.Before(series[1].Date))
}

func TestDailyClosesNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": []}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.DailyCloses(t.Context(), "ZZZZ", 30)
	require.Error(t, err)
	assert.True(t, clients.IsNoData(err))
}

func TestDailyClosesAllNullCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1748736000],
					"indicators": {"quote": [{"close": [null]}]}
				}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.DailyCloses(t.Context(), "MSFT", 30)
	assert.True(t, clients.IsNoData(err))
}

func TestDailyClosesChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.DailyCloses(t.Context(), "GONE", 30)
	require.Error(t, err)

	typed, ok := clients.AsError(err)
	require.True(t, ok)
	assert.Equal(t, clients.KindUpstream, typed.Kind)
	assert.Contains(t, typed.Message, "delisted")
}

func TestDailyClosesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.DailyCloses(t.Context(), "MSFT", 30)
	require.Error(t, err)

	typed, ok := clients.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, typed.Status)
}

func TestDailyClosesDefaultLookback(t *testing.T) {
	var gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte(`{"chart": {"result": [{"timestamp": [1748736000], "indicators": {"quote": [{"close": [1.0]}]}}]}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.DailyCloses(t.Context(), "MSFT", 0)
	require.NoError(t, err)
	assert.Equal(t, "30d", gotRange)
}

package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/advice"
	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/models"
)

func TestCryptoReportClassifiesDecision(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.GeminiKey = "gk-1"
	})

	// 100 -> 120 is a +20% move, above the strong-buy threshold
	env.Crypto.Series["bitcoin"] = sampleSeries(100, 105, 110, 120)
	env.GenAI.Client.Responses = []string{
		"Decision: Strong Buy\n1. Momentum is strong.\n2. Price above range.\n3. Volume rising.",
	}

	rec := env.doRequest(t, http.MethodPost, "/api/crypto", token, map[string]string{
		"symbol": "btc",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "BTC", body["symbol"])
	assert.Equal(t, 120.0, body["last_price"])
	assert.Equal(t, 20.0, body["pct_change"])
	assert.Equal(t, 120.0, body["highest"])
	assert.Equal(t, 100.0, body["lowest"])
	assert.Equal(t, string(models.DecisionStrongBuy), body["decision"])

	history, ok := body["history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 4)
	first := history[0].(map[string]interface{})
	assert.Equal(t, "2025-05-01", first["Date"])
	assert.Equal(t, 100.0, first["price"])

	assert.Equal(t, 1, env.Crypto.Calls)
	assert.Equal(t, 1, env.GenAI.Client.Calls)
}

func TestStocksReport(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, func(u *models.User) {
		u.GeminiKey = "gk-1"
	})

	env.Stocks.Series["MSFT"] = sampleSeries(410.25, 405.7, 402.314)
	env.GenAI.Client.Responses = []string{"Decision: Hold\n1. Flat trend.\n2. No catalyst.\n3. Wait."}

	rec := env.doRequest(t, http.MethodPost, "/api/stocks", token, map[string]string{
		"symbol": "msft",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "MSFT", body["symbol"])
	// Prices come back rounded to 2 decimals
	assert.Equal(t, 402.31, body["last_price"])
	assert.Equal(t, string(models.DecisionHold), body["decision"])
	assert.Equal(t, 1, env.Stocks.Calls)
}

func TestStocksMissingGeminiKeyStillReturnsSeries(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	env.Stocks.Series["MSFT"] = sampleSeries(100, 101)

	rec := env.doRequest(t, http.MethodPost, "/api/stocks", token, map[string]string{
		"symbol": "MSFT",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, advice.MissingKeyAdvice, body["advice"])
	assert.Equal(t, string(models.DecisionNone), body["decision"])
	assert.Zero(t, env.GenAI.Client.Calls)
}

func TestStocksRequiresSymbol(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	rec := env.doRequest(t, http.MethodPost, "/api/stocks", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarketNoDataIs404(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	env.Stocks.Err = clients.NoData("stocks", "no rows")

	rec := env.doRequest(t, http.MethodPost, "/api/stocks", token, map[string]string{
		"symbol": "ZZZZ",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketUpstreamFailureIs502(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t)

	env.Crypto.Err = clients.Upstream(500, "crypto", "internal error")

	rec := env.doRequest(t, http.MethodPost, "/api/crypto", token, map[string]string{
		"symbol": "BTC",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

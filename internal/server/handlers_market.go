package server

import (
	"math"
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/clients/crypto"
	"github.com/bobmcallan/dayplan/internal/clients/stocks"
	"github.com/bobmcallan/dayplan/internal/models"
)

// round2 rounds to 2 decimal places for response payloads.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// historyPoint is one sample in a market response, prices rounded.
type historyPoint struct {
	Date  string  `json:"Date"`
	Price float64 `json:"price"`
}

// marketResponse is the common payload for the stocks and crypto routes.
type marketResponse struct {
	Symbol    string          `json:"symbol"`
	LastPrice float64         `json:"last_price"`
	PctChange float64         `json:"pct_change"`
	Highest   float64         `json:"highest"`
	Lowest    float64         `json:"lowest"`
	History   []historyPoint  `json:"history"`
	Advice    string          `json:"advice"`
	Decision  models.Decision `json:"decision"`
}

func buildMarketResponse(symbol, advice string, decision models.Decision, series models.PriceSeries) marketResponse {
	history := make([]historyPoint, 0, len(series))
	for _, p := range series {
		history = append(history, historyPoint{
			Date:  p.Date.Format("2006-01-02"),
			Price: round2(p.Value),
		})
	}
	return marketResponse{
		Symbol:    symbol,
		LastPrice: round2(series.Last()),
		PctChange: round2(series.PctChange()),
		Highest:   round2(series.High()),
		Lowest:    round2(series.Low()),
		History:   history,
		Advice:    advice,
		Decision:  decision,
	}
}

// writeSeriesError maps adapter error kinds onto HTTP statuses.
func (s *Server) writeSeriesError(w http.ResponseWriter, symbol string, err error) {
	s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Market data fetch failed")
	if clients.IsNoData(err) {
		WriteError(w, http.StatusNotFound, "no market data for "+symbol)
		return
	}
	WriteError(w, http.StatusBadGateway, "failed to fetch market data: "+err.Error())
}

// handleStocks handles POST /api/stocks — 30-day close series plus advice.
func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx := r.Context()

	user, err := s.app.Storage.UserStore().GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	series, err := s.app.StockClient.DailyCloses(ctx, symbol, stocks.DefaultLookbackDays)
	if err != nil {
		s.writeSeriesError(w, symbol, err)
		return
	}

	adviceText, decision := s.app.AdviceEngine.MarketAdvice(ctx, user.GeminiKey, "stock", symbol, series)
	WriteJSON(w, http.StatusOK, buildMarketResponse(symbol, adviceText, decision, series))
}

// handleCrypto handles POST /api/crypto — 30-day price series plus advice.
func (s *Server) handleCrypto(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx := r.Context()

	user, err := s.app.Storage.UserStore().GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	series, err := s.app.CryptoClient.MarketChart(ctx, crypto.CoinID(symbol), crypto.DefaultLookbackDays)
	if err != nil {
		s.writeSeriesError(w, symbol, err)
		return
	}

	adviceText, decision := s.app.AdviceEngine.MarketAdvice(ctx, user.GeminiKey, "cryptocurrency", symbol, series)
	WriteJSON(w, http.StatusOK, buildMarketResponse(symbol, adviceText, decision, series))
}

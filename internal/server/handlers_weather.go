package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/clients/weather"
	"github.com/bobmcallan/dayplan/internal/models"
)

// handleWeather handles GET and POST /api/weather.
//
// GET returns current conditions plus model advice, or — when the
// weather key is absent — a need_api response listing every missing key,
// without touching any upstream. POST stores the weather and Gemini keys.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleWeatherKeys(w, r, session.Email)
	case http.MethodGet:
		s.handleWeatherReport(w, r, session.Email)
	}
}

func (s *Server) handleWeatherKeys(w http.ResponseWriter, r *http.Request, email string) {
	var req struct {
		WeatherKey string `json:"weather_api"`
		GeminiKey  string `json:"google_gemini_api_key"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	if v := strings.TrimSpace(req.WeatherKey); v != "" {
		if err := store.SetCredential(ctx, email, models.SlotWeatherKey, v); err != nil {
			s.logger.Error().Err(err).Msg("Failed to save weather key")
			WriteError(w, http.StatusInternalServerError, "failed to save keys")
			return
		}
	}
	if v := strings.TrimSpace(req.GeminiKey); v != "" {
		if err := store.SetCredential(ctx, email, models.SlotGeminiKey, v); err != nil {
			s.logger.Error().Err(err).Msg("Failed to save gemini key")
			WriteError(w, http.StatusInternalServerError, "failed to save keys")
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (s *Server) handleWeatherReport(w http.ResponseWriter, r *http.Request, email string) {
	ctx := r.Context()

	user, err := s.app.Storage.UserStore().GetUser(ctx, email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	// Missing keys short-circuit before any upstream call
	var missing []string
	if user.WeatherKey == "" {
		missing = append(missing, string(models.SlotWeatherKey))
	}
	if user.GeminiKey == "" {
		missing = append(missing, string(models.SlotGeminiKey))
	}
	if user.WeatherKey == "" {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"need_api": true,
			"missing":  missing,
		})
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		city, _ = s.app.WeatherClient.CurrentCity(ctx)
		if city == "" {
			city = weather.DefaultCity
		}
	}

	report, err := s.app.WeatherClient.CurrentWeather(ctx, city, user.WeatherKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("city", city).Msg("Weather fetch failed")
		WriteError(w, http.StatusBadGateway, "failed to fetch weather: "+err.Error())
		return
	}

	adviceText := s.app.AdviceEngine.WeatherAdvice(ctx, user.GeminiKey, report.City, report)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"weather": report,
		"advice":  adviceText,
	})
}

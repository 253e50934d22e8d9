package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
)

// handleHoroscope handles GET and POST /api/horoscope.
//
// GET returns today's horoscope for the stored zodiac sign; POST stores
// the sign (and optionally a Gemini key) for later reads.
func (s *Server) handleHoroscope(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	if r.Method == http.MethodPost {
		var req struct {
			ZodiacSign string `json:"zodiac_sign"`
			GeminiKey  string `json:"google_gemini_api_key"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		if v := strings.TrimSpace(req.ZodiacSign); v != "" {
			if err := store.SetCredential(ctx, session.Email, models.SlotZodiacSign, v); err != nil {
				s.logger.Error().Err(err).Msg("Failed to save zodiac sign")
				WriteError(w, http.StatusInternalServerError, "failed to save zodiac sign")
				return
			}
		}
		if v := strings.TrimSpace(req.GeminiKey); v != "" {
			if err := store.SetCredential(ctx, session.Email, models.SlotGeminiKey, v); err != nil {
				s.logger.Error().Err(err).Msg("Failed to save gemini key")
				WriteError(w, http.StatusInternalServerError, "failed to save keys")
				return
			}
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
		return
	}

	user, err := store.GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	var missing []models.Slot
	if user.GeminiKey == "" {
		missing = append(missing, models.SlotGeminiKey)
	}
	if user.ZodiacSign == "" {
		missing = append(missing, models.SlotZodiacSign)
	}
	if len(missing) > 0 {
		needAPI(w, missing...)
		return
	}

	horoscope, err := s.app.AdviceEngine.Horoscope(ctx, user.GeminiKey, user.ZodiacSign)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Horoscope generation failed")
		WriteError(w, http.StatusBadGateway, "failed to generate horoscope: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sign":      user.ZodiacSign,
		"horoscope": horoscope,
	})
}

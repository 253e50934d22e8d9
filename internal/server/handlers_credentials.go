package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// previewCredential masks a stored secret for display. Full values are
// never echoed back; enough of the tail is kept to recognize which key
// is stored.
func previewCredential(slot models.Slot, value string) string {
	if value == "" {
		return ""
	}
	// The zodiac sign is not a secret
	if slot == models.SlotZodiacSign {
		return value
	}
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// handleCredential handles GET and PUT /api/credentials/{slot}.
func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	slotName := PathParam(r, "/api/credentials/", "")
	slot, err := models.ParseSlot(slotName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	switch r.Method {
	case http.MethodGet:
		value, err := store.GetCredential(ctx, session.Email, slot)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "user not found")
				return
			}
			s.logger.Error().Err(err).Str("slot", string(slot)).Msg("Failed to read credential")
			WriteError(w, http.StatusInternalServerError, "failed to read credential")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"slot":    string(slot),
			"set":     value != "",
			"preview": previewCredential(slot, value),
		})

	case http.MethodPut:
		var req struct {
			Value string `json:"value"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		req.Value = strings.TrimSpace(req.Value)

		if err := store.SetCredential(ctx, session.Email, slot, req.Value); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "user not found")
				return
			}
			s.logger.Error().Err(err).Str("slot", string(slot)).Msg("Failed to write credential")
			WriteError(w, http.StatusInternalServerError, "failed to save credential")
			return
		}

		resp := map[string]interface{}{
			"slot": string(slot),
			"set":  req.Value != "",
		}
		// Surface the cascade so clients know grants must be redone
		if cleared := slot.CascadeClears(); req.Value != "" && len(cleared) > 0 {
			names := make([]string, len(cleared))
			for i, p := range cleared {
				names[i] = string(p)
			}
			resp["cleared_tokens"] = names
		}

		s.logger.Info().Str("email", session.Email).Str("slot", string(slot)).Msg("Credential updated")
		WriteJSON(w, http.StatusOK, resp)
	}
}

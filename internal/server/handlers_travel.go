package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
)

// DefaultPlaceType is searched when the caller names no place types.
const DefaultPlaceType = "restaurant"

// handleTravel handles GET /api/travel?place_types=a,b — nearby places
// around the caller's geolocated position, one search per requested type.
func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	user, err := s.app.Storage.UserStore().GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.MapsKey == "" {
		needAPI(w, models.SlotMapsKey)
		return
	}

	placeTypes := []string{DefaultPlaceType}
	if raw := strings.TrimSpace(r.URL.Query().Get("place_types")); raw != "" {
		placeTypes = placeTypes[:0]
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				placeTypes = append(placeTypes, t)
			}
		}
	}
	if len(placeTypes) == 0 {
		placeTypes = []string{DefaultPlaceType}
	}

	lat, lng, err := s.app.PlacesClient.Geolocate(ctx, user.MapsKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Geolocation failed")
		WriteError(w, http.StatusBadGateway, "failed to geolocate: "+err.Error())
		return
	}

	// An upstream non-OK status for one type yields an empty list, not a
	// failed request
	places := make([]models.Place, 0)
	for _, placeType := range placeTypes {
		found, err := s.app.PlacesClient.Nearby(ctx, user.MapsKey, lat, lng, placeType)
		if err != nil {
			s.logger.Warn().Err(err).Str("type", placeType).Msg("Nearby search failed")
			WriteError(w, http.StatusBadGateway, "failed to search places: "+err.Error())
			return
		}
		places = append(places, found...)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"lat":    lat,
		"lng":    lng,
		"places": places,
	})
}

package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/clients/movies"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// needAPI writes the missing-credential response: the caller must supply
// the named keys before this route can do anything.
func needAPI(w http.ResponseWriter, slots ...models.Slot) {
	missing := make([]string, len(slots))
	for i, s := range slots {
		missing[i] = string(s)
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"need_api": true,
		"missing":  missing,
	})
}

// handleMovieGenres handles GET /api/movies/genres.
func (s *Server) handleMovieGenres(w http.ResponseWriter, r *http.Request) {
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
	if user.TMDBKey == "" {
		needAPI(w, models.SlotTMDBKey)
		return
	}

	genres, err := s.app.MoviesClient.Genres(ctx, user.TMDBKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Genre list fetch failed")
		WriteError(w, http.StatusBadGateway, "failed to fetch genres: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"genres": genres,
	})
}

// handleMovies handles POST /api/movies — popularity-ranked discovery.
func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		GenreIDs  []int  `json:"genre_ids"`
		Year      int    `json:"year"`
		Language  string `json:"language"`
		NumMovies int    `json:"num_movies"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := s.app.Storage.UserStore().GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.TMDBKey == "" {
		needAPI(w, models.SlotTMDBKey)
		return
	}

	limit := req.NumMovies
	if limit <= 0 {
		limit = movies.DefaultLimit
	}

	query := interfaces.MovieQuery{
		GenreIDs: req.GenreIDs,
		Year:     req.Year,
		Language: strings.TrimSpace(req.Language),
		Limit:    limit,
	}

	results, err := s.app.MoviesClient.Discover(ctx, user.TMDBKey, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Movie discovery failed")
		if clients.IsNoData(err) {
			WriteError(w, http.StatusNotFound, "no movies matched")
			return
		}
		WriteError(w, http.StatusBadGateway, "failed to fetch movies: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"movies": results,
	})
}

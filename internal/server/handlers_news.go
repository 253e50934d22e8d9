package server

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/clients/news"
	"github.com/bobmcallan/dayplan/internal/models"
)

// handleNews handles GET /api/news — today's headlines.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
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
	if user.NewsKey == "" {
		needAPI(w, models.SlotNewsKey)
		return
	}

	limit := news.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	articles, err := s.app.NewsClient.TodayNews(ctx, user.NewsKey, limit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("News fetch failed")
		if clients.IsNoData(err) {
			WriteJSON(w, http.StatusOK, map[string]interface{}{
				"articles": []models.NewsArticle{},
			})
			return
		}
		WriteError(w, http.StatusBadGateway, "failed to fetch news: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
	})
}

package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
)

// handleCalendarTasks handles POST /api/calendar/tasks — append an event
// to the user's primary calendar.
func (s *Server) handleCalendarTasks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		WriteError(w, http.StatusBadRequest, "date, start_time and end_time are required")
		return
	}

	token, ok := s.resolveGrant(w, r, session.Email, models.ProviderCalendar)
	if !ok {
		return
	}

	task := &models.CalendarTask{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}

	if err := s.app.CalendarClient.InsertTask(r.Context(), token, task); err != nil {
		s.logger.Warn().Err(err).Msg("Calendar insert failed")
		WriteError(w, http.StatusBadGateway, "failed to create event: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

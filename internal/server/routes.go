package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/dayplan/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Accounts and sessions
	mux.HandleFunc("/api/users", s.handleSignup)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/password-reset", s.handlePasswordReset)
	mux.HandleFunc("/api/auth/validate", s.handleAuthValidate)

	// Credential slots
	mux.HandleFunc("/api/credentials/", s.handleCredential)

	// Planner data
	mux.HandleFunc("/api/weather", s.handleWeather)
	mux.HandleFunc("/api/stocks", s.handleStocks)
	mux.HandleFunc("/api/crypto", s.handleCrypto)
	mux.HandleFunc("/api/movies/genres", s.handleMovieGenres)
	mux.HandleFunc("/api/movies", s.handleMovies)
	mux.HandleFunc("/api/news", s.handleNews)
	mux.HandleFunc("/api/travel", s.handleTravel)
	mux.HandleFunc("/api/horoscope", s.handleHoroscope)

	// Mail and calendar
	mux.HandleFunc("/api/email/summary", s.handleEmailSummary)
	mux.HandleFunc("/api/email/replies", s.handleEmailReplies)
	mux.HandleFunc("/api/email/send", s.handleEmailSend)
	mux.HandleFunc("/api/calendar/tasks", s.handleCalendarTasks)

	// OAuth grants
	mux.HandleFunc("/api/oauth/", s.routeOAuth)

	// Expenses
	mux.HandleFunc("/api/expenses", s.handleExpenseAdd)
	mux.HandleFunc("/api/expenses/range", s.handleExpenseRange)
	mux.HandleFunc("/api/expenses/report", s.handleExpenseReport)
}

// routeOAuth dispatches /api/oauth/{provider}/url and .../callback.
func (s *Server) routeOAuth(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/url"):
		s.handleOAuthURL(w, r)
	case strings.HasSuffix(r.URL.Path, "/callback"):
		s.handleOAuthCallback(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

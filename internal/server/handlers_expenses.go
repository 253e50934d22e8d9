package server

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/dayplan/internal/models"
	"github.com/bobmcallan/dayplan/internal/report"
)

const expenseDateLayout = "2006-01-02"

// handleExpenseAdd handles POST /api/expenses — record one spend entry.
func (s *Server) handleExpenseAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Date     string  `json:"date"`
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		WriteError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.Amount <= 0 {
		WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(expenseDateLayout)
	} else if _, err := time.Parse(expenseDateLayout, req.Date); err != nil {
		WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	expense := &models.Expense{
		Email:    session.Email,
		Date:     req.Date,
		Category: req.Category,
		Amount:   req.Amount,
	}
	if err := s.app.Storage.ExpenseStore().AddExpense(r.Context(), expense); err != nil {
		s.logger.Error().Err(err).Msg("Failed to add expense")
		WriteError(w, http.StatusInternalServerError, "failed to add expense")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
	})
}

// handleExpenseRange handles GET /api/expenses/range — the first and last
// recorded expense dates, for report date pickers.
func (s *Server) handleExpenseRange(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	min, max, err := s.app.Storage.ExpenseStore().ExpenseDateRange(r.Context(), session.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query expense range")
		WriteError(w, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"min_date": min,
		"max_date": max,
	})
}

// handleExpenseReport handles POST /api/expenses/report — category totals
// plus a rendered pie chart for the requested window.
func (s *Server) handleExpenseReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		FromDate string `json:"from_date"`
		ToDate   string `json:"to_date"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	for _, d := range []string{req.FromDate, req.ToDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(expenseDateLayout, d); err != nil {
			WriteError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		}
	}

	expenses, err := s.app.Storage.ExpenseStore().ListExpenses(r.Context(), session.Email, req.FromDate, req.ToDate)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list expenses")
		WriteError(w, http.StatusInternalServerError, "failed to query expenses")
		return
	}

	totals, total := report.Summarize(expenses)

	resp := map[string]interface{}{
		"categories": totals,
		"total":      round2(total),
		"count":      len(expenses),
	}

	if len(totals) > 0 {
		png, err := report.RenderCategoryPie(totals)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Chart render failed")
		} else {
			resp["chart_png"] = base64.StdEncoding.EncodeToString(png)
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

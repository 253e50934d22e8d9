package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
	"github.com/bobmcallan/dayplan/internal/tokencache"

	"golang.org/x/oauth2"
)

// resolveGrant resolves an OAuth token for the session, translating the
// token-cache outcomes into structured responses: a missing client secret
// surfaces as need_api, a missing or dead grant as need_auth with the
// consent URL to visit. Returns (nil, false) when a response was written.
func (s *Server) resolveGrant(w http.ResponseWriter, r *http.Request, email string, provider models.TokenProvider) (*oauth2.Token, bool) {
	ctx := r.Context()

	token, err := s.app.TokenCache.Resolve(ctx, email, provider)
	if err == nil {
		return token, true
	}

	if errors.Is(err, tokencache.ErrMissingClientSecret) {
		needAPI(w, models.SlotClientSecret)
		return nil, false
	}

	if errors.Is(err, tokencache.ErrAuthorizationRequired) {
		state, stateErr := s.signOAuthState(email, provider)
		if stateErr != nil {
			s.logger.Error().Err(stateErr).Msg("Failed to sign OAuth state")
			WriteError(w, http.StatusInternalServerError, "failed to start authorization")
			return nil, false
		}

		authURL, urlErr := s.app.TokenCache.AuthURL(ctx, email, provider, state)
		if urlErr != nil {
			if errors.Is(urlErr, tokencache.ErrMissingClientSecret) {
				needAPI(w, models.SlotClientSecret)
				return nil, false
			}
			s.logger.Error().Err(urlErr).Msg("Failed to build auth URL")
			WriteError(w, http.StatusInternalServerError, "failed to start authorization")
			return nil, false
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"need_auth": true,
			"provider":  string(provider),
			"auth_url":  authURL,
		})
		return nil, false
	}

	s.logger.Error().Err(err).Str("provider", string(provider)).Msg("Token resolution failed")
	WriteError(w, http.StatusInternalServerError, "failed to resolve authorization")
	return nil, false
}

// handleEmailSummary handles GET /api/email/summary — bullet-point
// summary of the last 48 hours of mail.
func (s *Server) handleEmailSummary(w http.ResponseWriter, r *http.Request) {
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
	if user.GeminiKey == "" {
		needAPI(w, models.SlotGeminiKey)
		return
	}

	token, ok := s.resolveGrant(w, r, session.Email, models.ProviderGmail)
	if !ok {
		return
	}

	messages, err := s.app.MailClient.RecentMessages(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Mail fetch failed")
		WriteError(w, http.StatusBadGateway, "failed to fetch mail: "+err.Error())
		return
	}

	summary, err := s.app.AdviceEngine.SummarizeEmails(ctx, user.GeminiKey, messages)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Email summary failed")
		WriteError(w, http.StatusBadGateway, "failed to summarize mail: "+err.Error())
		return
	}

	if messages == nil {
		messages = []*models.EmailMessage{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"emails":  messages,
	})
}

// handleEmailReplies handles POST /api/email/replies — exactly three
// reply drafts for a message body.
func (s *Server) handleEmailReplies(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		EmailBody string `json:"email_body"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.EmailBody) == "" {
		WriteError(w, http.StatusBadRequest, "email_body is required")
		return
	}

	ctx := r.Context()
	user, err := s.app.Storage.UserStore().GetUser(ctx, session.Email)
	if err != nil {
		WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.GeminiKey == "" {
		needAPI(w, models.SlotGeminiKey)
		return
	}

	replies, err := s.app.AdviceEngine.GenerateReplies(ctx, user.GeminiKey, req.EmailBody)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Reply generation failed")
		WriteError(w, http.StatusBadGateway, "failed to generate replies: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"replies": replies,
	})
}

// handleEmailSend handles POST /api/email/send.
func (s *Server) handleEmailSend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.To) == "" {
		WriteError(w, http.StatusBadRequest, "to is required")
		return
	}

	token, ok := s.resolveGrant(w, r, session.Email, models.ProviderGmail)
	if !ok {
		return
	}

	id, err := s.app.MailClient.Send(r.Context(), token, req.To, req.Subject, req.Body)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Mail send failed")
		WriteError(w, http.StatusBadGateway, "failed to send mail: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "email sent",
		"id":      id,
	})
}

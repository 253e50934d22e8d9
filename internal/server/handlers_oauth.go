package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/dayplan/internal/models"
	"github.com/bobmcallan/dayplan/internal/tokencache"
)

// oauthStateExpiry bounds how long a consent round-trip may take.
const oauthStateExpiry = 10 * time.Minute

// signOAuthState creates the signed state parameter for the consent
// redirect. The callback arrives from Google without a bearer token, so
// the state is what ties the code back to a user.
func (s *Server) signOAuthState(email string, provider models.TokenProvider) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      email,
		"provider": string(provider),
		"purpose":  "oauth_state",
		"iat":      now.Unix(),
		"exp":      now.Add(oauthStateExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.app.Config.Auth.JWTSecret))
}

// parseOAuthState validates a state parameter and returns the email it
// was minted for.
func (s *Server) parseOAuthState(state string, provider models.TokenProvider) (string, error) {
	claims, err := validateSessionToken(state, []byte(s.app.Config.Auth.JWTSecret))
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "oauth_state" {
		return "", errors.New("not an authorization state token")
	}
	if p, _ := claims["provider"].(string); p != string(provider) {
		return "", fmt.Errorf("state was minted for provider %q", p)
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", errors.New("state has no subject")
	}
	return email, nil
}

// handleOAuthURL handles GET /api/oauth/{provider}/url — start the
// authorization-code flow for a provider.
func (s *Server) handleOAuthURL(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	provider, err := models.ParseTokenProvider(PathParam(r, "/api/oauth/", "/url"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.signOAuthState(session.Email, provider)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign OAuth state")
		WriteError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	authURL, err := s.app.TokenCache.AuthURL(r.Context(), session.Email, provider, state)
	if err != nil {
		if errors.Is(err, tokencache.ErrMissingClientSecret) {
			needAPI(w, models.SlotClientSecret)
			return
		}
		s.logger.Error().Err(err).Msg("Failed to build auth URL")
		WriteError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"provider": string(provider),
		"auth_url": authURL,
	})
}

// handleOAuthCallback handles GET /api/oauth/{provider}/callback — the
// redirect target of the consent screen. Unauthenticated by design: the
// signed state parameter identifies the user.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	provider, err := models.ParseTokenProvider(PathParam(r, "/api/oauth/", "/callback"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query()
	if upstreamErr := query.Get("error"); upstreamErr != "" {
		WriteError(w, http.StatusBadRequest, "authorization denied: "+upstreamErr)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		WriteError(w, http.StatusBadRequest, "code and state are required")
		return
	}

	email, err := s.parseOAuthState(state, provider)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid state: "+err.Error())
		return
	}

	if _, err := s.app.TokenCache.Exchange(r.Context(), email, provider, code); err != nil {
		if errors.Is(err, tokencache.ErrMissingClientSecret) {
			needAPI(w, models.SlotClientSecret)
			return
		}
		s.logger.Warn().Err(err).Str("provider", string(provider)).Msg("Code exchange failed")
		WriteError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	s.logger.Info().Str("email", email).Str("provider", string(provider)).Msg("Authorization granted")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"provider": string(provider),
	})
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// --- Session tokens ---

// signSessionToken creates a signed session JWT for a user.
func signSessionToken(email string, config *common.Config) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"iss":   "dayplan-server",
		"iat":   now.Unix(),
		"exp":   now.Add(config.Auth.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Auth.JWTSecret))
}

// validateSessionToken parses and validates a session JWT.
func validateSessionToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// requireSession returns the authenticated session or writes a 401.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*common.Session, bool) {
	session := common.SessionFromContext(r.Context())
	if session == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return session, true
}

// --- Password hashing ---

// hashPassword hashes with bcrypt cost 10, truncating to bcrypt's 72-byte
// input limit first so over-long passwords fail comparison consistently
// instead of erroring.
func hashPassword(password string) (string, error) {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes, 10)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes) == nil
}

func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if len(email) > 254 {
		return "email must be 254 characters or fewer"
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "email is not valid"
	}
	for _, c := range email {
		if c < 0x21 || c == 0x7f {
			return "email contains invalid characters"
		}
	}
	return ""
}

// --- Handlers ---

// handleSignup handles POST /api/users — create a new account.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errMsg := validateEmail(req.Email); errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	if _, err := store.GetUser(ctx, req.Email); err == nil {
		WriteError(w, http.StatusConflict, "user already exists")
		return
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Failed to check existing user")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	s.logger.Info().Str("email", req.Email).Msg("User created")
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"email": user.Email,
	})
}

// handleLogin handles POST /api/auth/login — exchange credentials for a
// session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.app.Storage.UserStore().GetUser(r.Context(), req.Email)
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		// Same response for unknown user and wrong password
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := signSessionToken(user.Email, s.app.Config)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign session token")
		WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"email": user.Email,
	})
}

// handlePasswordReset handles POST /api/auth/password-reset.
func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email       string `json:"email"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.NewPassword == "" {
		WriteError(w, http.StatusBadRequest, "new_password is required")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.UserStore()

	user, err := store.GetUser(ctx, req.Email)
	if err != nil || !checkPassword(user.PasswordHash, req.OldPassword) {
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	if err := store.UpdatePassword(ctx, user.Email, hash); err != nil {
		s.logger.Error().Err(err).Msg("Failed to update password")
		WriteError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	s.logger.Info().Str("email", user.Email).Msg("Password reset")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// handleAuthValidate handles GET /api/auth/validate — check the bearer
// token and return the session identity.
func (s *Server) handleAuthValidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"email": session.Email,
	})
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	identityApplication "github.com/edusense/edusense/internal/identity/application"
)

// AuthHandler handles account registration, login, and session routes.
type AuthHandler struct {
	auth         *identityApplication.AuthService
	secureCookie bool
	logger       *slog.Logger
}

// AuthHandlerConfig holds dependencies for the auth handler.
type AuthHandlerConfig struct {
	Auth *identityApplication.AuthService
	// SecureCookie marks the session cookie Secure. Off for local
	// development over plain HTTP.
	SecureCookie bool
	Logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthHandler{
		auth:         cfg.Auth,
		secureCookie: cfg.SecureCookie,
		logger:       cfg.Logger,
	}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse carries the session token in the body for API clients on
// top of the cookie for browsers.
type authResponse struct {
	Message   string                      `json:"message"`
	Token     string                      `json:"token"`
	ExpiresAt time.Time                   `json:"expires_at"`
	User      identityApplication.UserDTO `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Register(r.Context(), identityApplication.RegisterCommand{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to register")
		return
	}

	h.setSessionCookie(w, result)
	writeJSON(w, http.StatusCreated, authResponse{
		Message:   "Registered successfully",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), identityApplication.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to log in")
		return
	}

	h.setSessionCookie(w, result)
	writeJSON(w, http.StatusOK, authResponse{
		Message:   "Login success",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Logout handles POST /api/auth/logout. Stateless tokens cannot be
// revoked, so logout just clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, result *identityApplication.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

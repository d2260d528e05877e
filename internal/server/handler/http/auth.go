package http

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/avetrov/filmweek/internal/middleware"
	"github.com/avetrov/filmweek/internal/models"
	"github.com/avetrov/filmweek/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns its first bearer token.
	Register(ctx context.Context, username, email, password string) (string, error)
	// Login verifies the password and returns a fresh bearer token.
	Login(ctx context.Context, username, password string) (string, error)
	// Profile returns the profile for a verified user id.
	Profile(ctx context.Context, userID int) (models.UserProfile, error)
}

// AuthHandler handles HTTP requests for registration, login, and session
// resolution.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register. It expects a JSON body with
// non-empty username and password, creates the account, and responds with
// the account's first bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, service.ErrUserExists) {
		writeDetail(w, http.StatusConflict, "Username already registered")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /api/auth/login. Invalid credentials yield 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/auth/me, resolving the authenticated user id from
// the request context to a profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == 0 {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := h.AuthService.Profile(r.Context(), userID)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

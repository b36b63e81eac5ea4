package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/emberline-pos/api/internal/middleware"
	"github.com/emberline-pos/api/internal/service"
)

// AuthHandler handles PIN login, logout and current-user endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
}

// RegisterProtectedRoutes registers auth endpoints that require a session.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/permissions", h.Permissions)
}

// --- Request / Response types ---

type loginRequest struct {
	Pin string `json:"pin"`
}

type loginResponse struct {
	Success bool                 `json:"success"`
	User    service.StaffSummary `json:"user"`
}

type meResponse struct {
	Authenticated bool                  `json:"authenticated"`
	User          *service.StaffSummary `json:"user,omitempty"`
}

// --- Handlers ---

// Login authenticates a PIN and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Pin)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid PIN"})
			return
		}
		h.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: user})
}

// Logout destroys the session and clears the cookie. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(mw.SessionCookie); err == nil {
		h.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current user, or authenticated=false with 401.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(mw.SessionCookie)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, meResponse{Authenticated: false})
		return
	}

	identity, err := h.auth.CurrentUser(cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, meResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Authenticated: true,
		User: &service.StaffSummary{
			ID:          identity.StaffID,
			Name:        identity.Name,
			Role:        identity.Role,
			Permissions: identity.Permissions,
		},
	})
}

// Permissions returns the capability snapshot of the current session.
func (h *AuthHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	identity := mw.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": identity.Permissions})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

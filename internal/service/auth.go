package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
	"github.com/emberline-pos/api/internal/session"
)

// Errors returned by the auth service.
var (
	// ErrInvalidCredentials covers unknown PINs and inactive staff alike;
	// the two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// StaffStore defines the database methods the auth service needs.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListActiveStaff(ctx context.Context) ([]database.Staff, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

// StaffSummary is the public view of a staff member returned on login.
type StaffSummary struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

// AuthService validates PINs and manages sessions. When store is nil (the
// server started without a database) or the store turns out to be
// unreachable, it falls back to the built-in demo roster instead of
// failing.
type AuthService struct {
	store    StaffStore
	sessions *session.Store
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. store may be nil for demo mode.
func NewAuthService(store StaffStore, sessions *session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{store: store, sessions: sessions, logger: logger}
}

// Login verifies the PIN against active staff, creates a session and
// returns its token plus a public summary. PINs are stored as bcrypt
// hashes, so matching walks the active roster and verifies each hash;
// bcrypt's comparison is constant-time per candidate.
func (s *AuthService) Login(ctx context.Context, pin string) (string, StaffSummary, error) {
	if pin == "" {
		return "", StaffSummary{}, ErrInvalidCredentials
	}

	if s.store == nil {
		return s.demoLogin(pin)
	}

	staff, err := s.store.ListActiveStaff(ctx)
	if err != nil {
		if database.IsUnavailable(err) {
			s.logger.Warn("staff store unreachable, falling back to demo roster", "error", err)
			return s.demoLogin(pin)
		}
		return "", StaffSummary{}, fmt.Errorf("list active staff: %w", err)
	}

	for _, st := range staff {
		if bcrypt.CompareHashAndPassword([]byte(st.PinHash), []byte(pin)) != nil {
			continue
		}

		identity := session.Identity{
			StaffID:     st.ID,
			Name:        st.Name,
			Role:        st.Role,
			Permissions: st.Permissions,
		}
		token := s.sessions.Create(identity)

		// Fire-and-forget: a failed timestamp update must not fail the
		// login, but it is logged rather than silently discarded.
		go func(id int64) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.store.UpdateLastLogin(ctx, id); err != nil {
				s.logger.Warn("update last_login failed", "staff_id", id, "error", err)
			}
		}(st.ID)

		return token, StaffSummary{
			ID:          st.ID,
			Name:        st.Name,
			Role:        st.Role,
			Permissions: identity.Permissions,
		}, nil
	}

	return "", StaffSummary{}, ErrInvalidCredentials
}

func (s *AuthService) demoLogin(pin string) (string, StaffSummary, error) {
	st, ok := demo.StaffByPIN(pin)
	if !ok {
		return "", StaffSummary{}, ErrInvalidCredentials
	}

	token := s.sessions.Create(session.Identity{
		StaffID:     st.ID,
		Name:        st.Name,
		Role:        st.Role,
		Permissions: st.Permissions,
	})
	return token, StaffSummary{
		ID:          st.ID,
		Name:        st.Name,
		Role:        st.Role,
		Permissions: st.Permissions,
	}, nil
}

// Logout destroys the session. Always succeeds, even for unknown tokens.
func (s *AuthService) Logout(token string) {
	s.sessions.Destroy(token)
}

// CurrentUser resolves a session token to its stored identity.
func (s *AuthService) CurrentUser(token string) (session.Identity, error) {
	id, ok := s.sessions.Lookup(token)
	if !ok {
		return session.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emberline-pos/api/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "pos_session"

// SessionLookup resolves a session token to an identity. Satisfied by
// *session.Store.
type SessionLookup interface {
	Lookup(token string) (session.Identity, bool)
}

// Authenticate resolves the session cookie and puts the identity on the
// request context. Requests with no cookie or an unknown token get 401
// before any handler runs.
func Authenticate(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			identity, ok := sessions.Lookup(cookie.Value)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on one capability from the session's
// permission snapshot. Must be chained after Authenticate; permissions are
// read from the session, not re-fetched, so an edit takes effect on the
// staff member's next login.
func RequirePermission(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			if !identity.Permissions[capability] {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "permission denied"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity, or nil outside
// an Authenticate chain.
func IdentityFromContext(ctx context.Context) *session.Identity {
	identity, _ := ctx.Value(identityKey).(*session.Identity)
	return identity
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

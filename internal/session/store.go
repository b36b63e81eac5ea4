// Package session holds authenticated-session state in process memory.
// Sessions are keyed by an opaque token delivered to the client as a
// cookie; they are never persisted, so a restart logs everyone out.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identity is the snapshot stored at login. Permissions are frozen here:
// editing a staff member's permissions takes effect on their next login,
// not on live sessions.
type Identity struct {
	StaffID     int64
	Name        string
	Role        string
	Permissions map[string]bool
}

type entry struct {
	identity  Identity
	expiresAt time.Time
}

// Store maps session tokens to identities. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]entry
}

// NewStore creates a Store whose sessions expire ttl after creation. A zero
// ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]entry),
	}
}

// Create stores an identity snapshot under a fresh token and returns the
// token. Every login produces a new token; tokens are never reused.
func (s *Store) Create(id Identity) string {
	token := uuid.NewString()

	// Copy the permissions map so later edits to the caller's map cannot
	// leak into the stored snapshot.
	perms := make(map[string]bool, len(id.Permissions))
	for k, v := range id.Permissions {
		perms[k] = v
	}
	id.Permissions = perms

	e := entry{identity: id}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[token] = e
	s.mu.Unlock()
	return token
}

// Lookup returns the identity stored under token. Absent or expired tokens
// report ok = false; callers must treat that as unauthenticated.
func (s *Store) Lookup(token string) (Identity, bool) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.Destroy(token)
		return Identity{}, false
	}
	return e.identity, true
}

// Destroy removes the session. Idempotent: destroying an absent token is a
// no-op.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

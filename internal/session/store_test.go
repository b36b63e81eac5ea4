package session

import (
	"testing"
	"time"
)

func testIdentity() Identity {
	return Identity{
		StaffID: 7,
		Name:    "Sarah Staff",
		Role:    "staff",
		Permissions: map[string]bool{
			"pos":       true,
			"inventory": false,
		},
	}
}

func TestCreateAndLookup(t *testing.T) {
	s := NewStore(0)

	token := s.Create(testIdentity())
	if token == "" {
		t.Fatal("Create returned empty token")
	}

	got, ok := s.Lookup(token)
	if !ok {
		t.Fatal("Lookup: token not found")
	}
	if got.StaffID != 7 || got.Name != "Sarah Staff" || got.Role != "staff" {
		t.Errorf("Lookup returned %+v", got)
	}
	if !got.Permissions["pos"] || got.Permissions["inventory"] {
		t.Errorf("permissions = %v", got.Permissions)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	s := NewStore(0)
	if _, ok := s.Lookup("no-such-token"); ok {
		t.Fatal("Lookup of unknown token reported ok")
	}
}

func TestCreateIssuesFreshTokens(t *testing.T) {
	s := NewStore(0)
	id := testIdentity()

	t1 := s.Create(id)
	t2 := s.Create(id)
	if t1 == t2 {
		t.Fatal("two logins produced the same token")
	}
	if _, ok := s.Lookup(t1); !ok {
		t.Error("first session gone after second login")
	}
	if _, ok := s.Lookup(t2); !ok {
		t.Error("second session not found")
	}
}

func TestPermissionSnapshotIsolation(t *testing.T) {
	s := NewStore(0)
	perms := map[string]bool{"pos": true, "staff": false}
	token := s.Create(Identity{StaffID: 1, Name: "Admin", Role: "admin", Permissions: perms})

	// Edit the caller's map after login; the session snapshot must not move.
	perms["staff"] = true

	got, ok := s.Lookup(token)
	if !ok {
		t.Fatal("Lookup failed")
	}
	if got.Permissions["staff"] {
		t.Error("session snapshot changed after external permission edit")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	s := NewStore(0)
	token := s.Create(testIdentity())

	s.Destroy(token)
	if _, ok := s.Lookup(token); ok {
		t.Fatal("session survived Destroy")
	}

	// Destroying again (or destroying garbage) must not panic.
	s.Destroy(token)
	s.Destroy("never-existed")
}

func TestSessionExpiry(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	token := s.Create(testIdentity())

	if _, ok := s.Lookup(token); !ok {
		t.Fatal("session expired immediately")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Lookup(token); ok {
		t.Fatal("session outlived its TTL")
	}
}

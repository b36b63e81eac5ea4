package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	mw "github.com/emberline-pos/api/internal/middleware"
	"github.com/emberline-pos/api/internal/service"
	"github.com/emberline-pos/api/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAuthRig wires an AuthHandler in demo mode (nil staff store) onto a
// bare router, the same shape the real router uses.
func newAuthRig() (chi.Router, *session.Store) {
	sessions := session.NewStore(0)
	auth := service.NewAuthService(nil, sessions, testLogger())
	h := NewAuthHandler(auth, testLogger())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(sessions))
		h.RegisterProtectedRoutes(r)
	})
	return r, sessions
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == mw.SessionCookie {
			return c
		}
	}
	return nil
}

func login(t *testing.T, r chi.Router, pin string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"pin":"`+pin+`"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, sessionCookie(rr)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r, sessions := newAuthRig()

	rr, cookie := login(t, r, "1111")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	var resp struct {
		Success bool                 `json:"success"`
		User    service.StaffSummary `json:"user"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.User.Name != "John Manager" || resp.User.Role != "manager" {
		t.Errorf("user = %+v", resp.User)
	}

	if _, ok := sessions.Lookup(cookie.Value); !ok {
		t.Error("cookie token not in session store")
	}
}

func TestLoginInvalidPinGenericError(t *testing.T) {
	r, _ := newAuthRig()

	for _, pin := range []string{"9999", ""} {
		rr, cookie := login(t, r, pin)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("pin %q: status = %d, want 401", pin, rr.Code)
		}
		if cookie != nil {
			t.Errorf("pin %q: cookie set on failed login", pin)
		}

		var resp map[string]any
		decodeBody(t, rr, &resp)
		if resp["error"] != "Invalid PIN" {
			t.Errorf("pin %q: error = %v, want %q", pin, resp["error"], "Invalid PIN")
		}
	}
}

func TestLoginMalformedBody(t *testing.T) {
	r, _ := newAuthRig()

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestMeWithoutSession(t *testing.T) {
	r, _ := newAuthRig()

	req := httptest.NewRequest("GET", "/auth/me", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}

	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeBody(t, rr, &resp)
	if resp.Authenticated {
		t.Error("authenticated = true without a session")
	}
}

func TestMeWithSession(t *testing.T) {
	r, _ := newAuthRig()
	_, cookie := login(t, r, "2222")

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Authenticated bool                  `json:"authenticated"`
		User          *service.StaffSummary `json:"user"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Authenticated || resp.User == nil {
		t.Fatalf("response = %+v", resp)
	}
	if resp.User.Name != "Sarah Staff" {
		t.Errorf("user name = %q", resp.User.Name)
	}
}

func TestLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	r, sessions := newAuthRig()
	_, cookie := login(t, r, "1234")

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	cleared := sessionCookie(rr)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Error("logout did not clear the cookie")
	}
	if _, ok := sessions.Lookup(cookie.Value); ok {
		t.Error("session survived logout")
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	r, _ := newAuthRig()

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestPermissionsEndpoint(t *testing.T) {
	r, _ := newAuthRig()
	_, cookie := login(t, r, "1111")

	req := httptest.NewRequest("GET", "/auth/permissions", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Permissions map[string]bool `json:"permissions"`
	}
	decodeBody(t, rr, &resp)
	if !resp.Permissions["inventory"] || resp.Permissions["staff"] {
		t.Errorf("permissions = %v", resp.Permissions)
	}

	// Unauthenticated call is rejected by the middleware.
	req = httptest.NewRequest("GET", "/auth/permissions", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rr.Code)
	}
}

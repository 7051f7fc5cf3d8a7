package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testKey, "messhub-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "messhub-session", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestCurrentUser_NotSet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := CurrentUser(r); ok {
		t.Error("expected no user in fresh request")
	}
}

func TestWithTestUser(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = WithTestUser(r, &SessionUser{ID: "507f1f77bcf86cd799439011", Name: "rahim"})

	u, ok := CurrentUser(r)
	if !ok {
		t.Fatal("expected user in context")
	}
	if u.Name != "rahim" {
		t.Errorf("Name = %q, want rahim", u.Name)
	}
}

func TestSignInThenLoad(t *testing.T) {
	m := newTestManager(t)
	m.SetUserFetcher(func(ctx context.Context, id string) (*SessionUser, error) {
		return &SessionUser{ID: id, Name: "karim"}, nil
	})

	// Sign in and capture the cookie.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := m.SignIn(w, r, "507f1f77bcf86cd799439011"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie after sign-in")
	}

	// Replay the cookie through LoadSessionUser.
	var got *SessionUser
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	r2 := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r2.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r2)

	if got == nil {
		t.Fatal("expected user loaded from session")
	}
	if got.ID != "507f1f77bcf86cd799439011" || got.Name != "karim" {
		t.Errorf("got %+v", got)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	m := newTestManager(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	if err := m.SignOut(w, r); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected deletion cookie")
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}
}

func TestRequireSignedIn_Anonymous(t *testing.T) {
	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	}))

	// HTML request redirects to login with a return param.
	r := httptest.NewRequest(http.MethodGet, "/dashboard?tab=meals", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?return=") {
		t.Errorf("Location = %q, want /login?return=...", loc)
	}

	// API request gets a plain 401.
	r2 := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, r2)
	if w2.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w2.Code, http.StatusUnauthorized)
	}

	// HTMX request gets HX-Redirect.
	r3 := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r3.Header.Set("HX-Request", "true")
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, r3)
	if w3.Header().Get("HX-Redirect") == "" {
		t.Error("expected HX-Redirect header for HTMX request")
	}
}

func TestRequireSignedIn_SignedIn(t *testing.T) {
	called := false
	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r = WithTestUser(r, &SessionUser{ID: "507f1f77bcf86cd799439011", Name: "rahim"})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !called {
		t.Error("expected handler to run for signed-in request")
	}
}

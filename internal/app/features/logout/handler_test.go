package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PallabGomasta/messhub/internal/app/features/logout"
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, logger)
}

func TestServeLogout(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}

	// The session cookie is expired so the browser drops it.
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge > 0 {
			t.Errorf("session cookie should be expired, got MaxAge %d", c.MaxAge)
		}
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if redirect := rec.Header().Get("HX-Redirect"); redirect != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", redirect, "/")
	}
}

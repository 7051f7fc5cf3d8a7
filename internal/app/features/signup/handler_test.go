package signup_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/features/signup"
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/PallabGomasta/messhub/internal/app/system/indexes"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*signup.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	handler := signup.NewHandler(db, sessionMgr, errLog, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func postSignup(handler *signup.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()

	// Validation failures re-render the form, which panics without initialized templates
	func() {
		defer func() { recover() }()
		handler.HandleSignupPost(rec, req)
	}()
	return rec
}

func TestHandleSignupPost_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := postSignup(handler, url.Values{
		"username":         {"karim"},
		"email":            {"karim@example.com"},
		"password":         {"correct-horse-battery"},
		"confirm_password": {"correct-horse-battery"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/dashboard" {
		t.Errorf("Location: got %q, want %q", location, "/dashboard")
	}

	n, err := fixtures.DB().Collection("users").CountDocuments(ctx, bson.M{"username": "karim"})
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestHandleSignupPost_DuplicateUsername(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "karim")

	// Different casing must still collide with the existing account.
	rec := postSignup(handler, url.Values{
		"username":         {"KARIM"},
		"email":            {"karim2@example.com"},
		"password":         {"correct-horse-battery"},
		"confirm_password": {"correct-horse-battery"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate username should not redirect")
	}
}

func TestHandleSignupPost_PasswordMismatch(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := postSignup(handler, url.Values{
		"username":         {"karim"},
		"email":            {"karim@example.com"},
		"password":         {"correct-horse-battery"},
		"confirm_password": {"something-else"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Error("mismatched passwords should not redirect")
	}

	n, err := fixtures.DB().Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users created, got %d", n)
	}
}

func TestHandleSignupPost_ShortUsername(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postSignup(handler, url.Values{
		"username":         {"ab"},
		"email":            {"ab@example.com"},
		"password":         {"correct-horse-battery"},
		"confirm_password": {"correct-horse-battery"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Error("too-short username should not redirect")
	}
}

func TestHandleSignupPost_WeakPassword(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postSignup(handler, url.Values{
		"username":         {"karim"},
		"email":            {"karim@example.com"},
		"password":         {"short"},
		"confirm_password": {"short"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Error("weak password should not redirect")
	}
}

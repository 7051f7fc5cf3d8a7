package messstore

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/PallabGomasta/messhub/internal/app/system/indexes"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

// A duplicate join code must trigger a fresh run invocation per
// attempt: on replica sets a duplicate-key error aborts the whole
// transaction, so retrying the insert inside the same one can never
// succeed.
func TestCreateWithManager_FreshRunPerAttempt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	owner := fixtures.CreateUser(ctx, "owner")
	creator := fixtures.CreateUser(ctx, "founder")
	fixtures.CreateMess(ctx, "Taken", "111111", owner.ID)

	store := New(db)
	codes := []string{"111111", "111111", "222222"}
	store.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	runs := 0
	run := func(ctx context.Context, fn func(ctx context.Context) error) error {
		runs++
		return fn(ctx)
	}

	mess, err := store.CreateWithManager(ctx, "Green House", "12 Lake Road", creator.ID, run)
	if err != nil {
		t.Fatalf("CreateWithManager: %v", err)
	}
	if mess.Code != "222222" {
		t.Errorf("code: got %q, want %q", mess.Code, "222222")
	}
	if runs != 3 {
		t.Errorf("run invocations: got %d, want one per attempt (3)", runs)
	}

	n, err := db.Collection("messes").CountDocuments(ctx, bson.M{"name": "Green House"})
	if err != nil {
		t.Fatalf("count messes: %v", err)
	}
	if n != 1 {
		t.Errorf("messes inserted: got %d, want 1", n)
	}
}

func TestCreateWithManager_CodeExhausted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	owner := fixtures.CreateUser(ctx, "owner")
	creator := fixtures.CreateUser(ctx, "founder")
	fixtures.CreateMess(ctx, "Taken", "111111", owner.ID)

	store := New(db)
	store.newCode = func() string { return "111111" }

	runs := 0
	run := func(ctx context.Context, fn func(ctx context.Context) error) error {
		runs++
		return fn(ctx)
	}

	_, err := store.CreateWithManager(ctx, "Green House", "12 Lake Road", creator.ID, run)
	if !errors.Is(err, ErrCodeExhausted) {
		t.Fatalf("expected ErrCodeExhausted, got %v", err)
	}
	if runs != CodeAttempts {
		t.Errorf("run invocations: got %d, want %d", runs, CodeAttempts)
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := generateCode()
		if len(code) != 6 {
			t.Fatalf("code %q: want 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q: not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

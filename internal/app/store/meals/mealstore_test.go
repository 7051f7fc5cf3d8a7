package mealstore_test

import (
	"errors"
	"testing"
	"time"

	mealstore "github.com/PallabGomasta/messhub/internal/app/store/meals"
	"github.com/PallabGomasta/messhub/internal/app/system/indexes"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsert_LastWriterWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := mealstore.New(db)
	messID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	day := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) // mid-day timestamp

	first, err := store.Upsert(ctx, messID, userID, day, 1, 1, 1)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !first.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date not truncated to UTC midnight: %v", first.Date)
	}
	if first.Month != 3 || first.Year != 2025 {
		t.Errorf("month/year: got %d/%d, want 3/2025", first.Month, first.Year)
	}

	second, err := store.Upsert(ctx, messID, userID, day, 0, 2, 1)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Breakfast != 0 || second.Lunch != 2 || second.Dinner != 1 {
		t.Errorf("counts not replaced: %+v", second)
	}

	// Still exactly one row for the day.
	n, err := db.Collection("meals").CountDocuments(ctx, bson.M{
		"mess_id": messID, "user_id": userID,
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 meal row, got %d", n)
	}
}

func TestUpsert_NegativeCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := mealstore.New(db)

	_, err := store.Upsert(ctx, primitive.NewObjectID(), primitive.NewObjectID(), time.Now(), -1, 0, 0)
	if !errors.Is(err, mealstore.ErrNegativeCount) {
		t.Errorf("expected ErrNegativeCount, got %v", err)
	}
}

func TestTotalForUserRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := mealstore.New(db)

	messID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	fixtures.CreateMeal(ctx, messID, userID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 1, 1)
	fixtures.CreateMeal(ctx, messID, userID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 0, 2, 0)
	// Outside the window.
	fixtures.CreateMeal(ctx, messID, userID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 3, 3, 3)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	total, err := store.TotalForUserRange(ctx, messID, userID, from, to)
	if err != nil {
		t.Fatalf("TotalForUserRange: %v", err)
	}
	if total != 5 {
		t.Errorf("total: got %d, want 5", total)
	}
}

func TestTotalForUserRange_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := mealstore.New(db)

	total, err := store.TotalForUserRange(ctx, primitive.NewObjectID(), primitive.NewObjectID(),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TotalForUserRange: %v", err)
	}
	if total != 0 {
		t.Errorf("total: got %d, want 0", total)
	}
}

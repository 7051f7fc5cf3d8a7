package accounts_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/features/accounts"
	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/system/indexes"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*accounts.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	handler := accounts.NewHandler(db, errLog, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

// postTo drives a handler through a form POST with {id} set, swallowing
// template panics on re-render paths.
func postTo(handler http.HandlerFunc, target string, form url.Values, user testutil.TestUser, messID primitive.ObjectID) *testutil.ResponseRecorder {
	req := testutil.NewFormRequest(target, form, user)
	req = testutil.WithChiURLParam(req, "id", messID.Hex())
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		handler(rec.ResponseRecorder, req)
	}()
	return rec
}

func TestHandleMealPost_ManagerOwnRow(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)

	form := url.Values{
		"date":      {"2025-03-10"},
		"breakfast": {"1"},
		"lunch":     {"1"},
		"dinner":    {"2"},
	}
	rec := postTo(handler.HandleMealPost, "/accounts/"+mess.ID.Hex()+"/meals", form,
		testutil.UserFor(manager.ID, "manager"), mess.ID)

	rec.AssertRedirect(t, "/accounts/"+mess.ID.Hex()+"/meals")

	var meal models.Meal
	err := fixtures.DB().Collection("meals").FindOne(ctx, bson.M{
		"mess_id": mess.ID, "user_id": manager.ID,
	}).Decode(&meal)
	if err != nil {
		t.Fatalf("find meal: %v", err)
	}
	if meal.Breakfast != 1 || meal.Lunch != 1 || meal.Dinner != 2 {
		t.Errorf("counts: got %d/%d/%d, want 1/1/2", meal.Breakfast, meal.Lunch, meal.Dinner)
	}
	if !meal.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date: got %v", meal.Date)
	}
}

func TestHandleMealPost_MemberForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	// Even the member's own meals are recorded by the manager only.
	form := url.Values{
		"date":      {"2025-03-10"},
		"breakfast": {"1"},
		"lunch":     {"1"},
		"dinner":    {"1"},
	}
	rec := postTo(handler.HandleMealPost, "/accounts/"+mess.ID.Hex()+"/meals", form,
		testutil.UserFor(member.ID, "member"), mess.ID)

	if rec.Code == http.StatusSeeOther {
		t.Error("a member recording meals should not redirect")
	}
	n, err := fixtures.DB().Collection("meals").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if n != 0 {
		t.Errorf("no meal should be recorded, got %d rows", n)
	}
}

func TestHandleMealPost_ManagerForMember(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	form := url.Values{
		"user_id":   {member.ID.Hex()},
		"date":      {"2025-03-10"},
		"breakfast": {"0"},
		"lunch":     {"1"},
		"dinner":    {"1"},
	}
	rec := postTo(handler.HandleMealPost, "/accounts/"+mess.ID.Hex()+"/meals", form,
		testutil.UserFor(manager.ID, "manager"), mess.ID)

	rec.AssertRedirect(t, "/accounts/"+mess.ID.Hex()+"/meals")

	n, err := fixtures.DB().Collection("meals").CountDocuments(ctx, bson.M{
		"mess_id": mess.ID, "user_id": member.ID,
	})
	if err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the meal recorded for the member, got %d rows", n)
	}
}

func TestHandleMealPost_MemberForOtherForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	other := fixtures.CreateUser(ctx, "other")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)
	fixtures.CreateMembership(ctx, mess.ID, other.ID, models.RoleMember)

	form := url.Values{
		"user_id":   {other.ID.Hex()},
		"date":      {"2025-03-10"},
		"breakfast": {"1"},
	}
	rec := postTo(handler.HandleMealPost, "/accounts/"+mess.ID.Hex()+"/meals", form,
		testutil.UserFor(member.ID, "member"), mess.ID)

	if rec.Code == http.StatusSeeOther {
		t.Error("a member recording for someone else should not redirect")
	}
	n, err := fixtures.DB().Collection("meals").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if n != 0 {
		t.Errorf("no meal should be recorded, got %d rows", n)
	}
}

func TestHandleExpensePost(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	form := url.Values{
		"description": {"Rice and lentils"},
		"amount":      {"850.50"},
		"date":        {"2025-03-10"},
	}
	rec := postTo(handler.HandleExpensePost, "/accounts/"+mess.ID.Hex()+"/expenses", form,
		testutil.UserFor(manager.ID, "manager"), mess.ID)

	rec.AssertRedirect(t, "/accounts/"+mess.ID.Hex()+"/expenses")

	n, err := fixtures.DB().Collection("expenses").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expense, got %d", n)
	}

	// Every member gets a notification about the expense.
	for _, uid := range []primitive.ObjectID{manager.ID, member.ID} {
		n, err := fixtures.DB().Collection("notifications").CountDocuments(ctx, bson.M{"user_id": uid})
		if err != nil {
			t.Fatalf("count notifications: %v", err)
		}
		if n != 1 {
			t.Errorf("user %s notifications: got %d, want 1", uid.Hex(), n)
		}
	}
}

func TestHandleExpensePost_MemberForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	form := url.Values{
		"description": {"Rice"},
		"amount":      {"100.00"},
	}
	rec := postTo(handler.HandleExpensePost, "/accounts/"+mess.ID.Hex()+"/expenses", form,
		testutil.UserFor(member.ID, "member"), mess.ID)

	if rec.Code == http.StatusSeeOther {
		t.Error("a member recording an expense should not redirect")
	}
	n, err := fixtures.DB().Collection("expenses").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if n != 0 {
		t.Errorf("no expense should be recorded, got %d rows", n)
	}
}

func TestHandleDepositPost(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	form := url.Values{
		"user_id": {member.ID.Hex()},
		"amount":  {"1500.00"},
		"date":    {"2025-03-05"},
	}
	rec := postTo(handler.HandleDepositPost, "/accounts/"+mess.ID.Hex()+"/deposits", form,
		testutil.UserFor(manager.ID, "manager"), mess.ID)

	rec.AssertRedirect(t, "/accounts/"+mess.ID.Hex()+"/deposits")

	n, err := fixtures.DB().Collection("deposits").CountDocuments(ctx, bson.M{
		"mess_id": mess.ID, "user_id": member.ID,
	})
	if err != nil {
		t.Fatalf("count deposits: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deposit, got %d", n)
	}
}

func TestHandleDepositPost_BadAmount(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	form := url.Values{
		"user_id": {member.ID.Hex()},
		"amount":  {"not-a-number"},
	}
	rec := postTo(handler.HandleDepositPost, "/accounts/"+mess.ID.Hex()+"/deposits", form,
		testutil.UserFor(manager.ID, "manager"), mess.ID)

	if rec.Code == http.StatusSeeOther {
		t.Error("a bad amount should not redirect")
	}
	n, err := fixtures.DB().Collection("deposits").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count deposits: %v", err)
	}
	if n != 0 {
		t.Errorf("no deposit should be recorded, got %d rows", n)
	}
}

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/system/authutil"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/PallabGomasta/messhub/internal/app/system/normalize"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam injects a chi route parameter into the request
// context, so handlers that read chi.URLParam can be called directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts well-formed documents directly, bypassing the
// stores, so tests can arrange state without exercising the code under
// test.
type Fixtures struct {
	t  *testing.T
	db *mongo.Database
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given username. The password hash
// is a placeholder; use the signup flow to test real hashing.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     normalize.Username(username),
		UsernameCI:   normalize.UsernameKey(username),
		PasswordHash: "test-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture user %q: %v", username, err)
	}
	return u
}

// CreateUserWithPassword inserts a user whose password hash verifies
// against the given plaintext, for login-flow tests.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, username, password string) models.User {
	f.t.Helper()
	hash, err := authutil.HashPassword(password)
	if err != nil {
		f.t.Fatalf("fixture password hash: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     normalize.Username(username),
		UsernameCI:   normalize.UsernameKey(username),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture user %q: %v", username, err)
	}
	return u
}

// CreateMess inserts a mess with the given join code and a manager
// membership for managerID.
func (f *Fixtures) CreateMess(ctx context.Context, name, code string, managerID primitive.ObjectID) models.Mess {
	f.t.Helper()
	now := time.Now().UTC()
	m := models.Mess{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("messes").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture mess %q: %v", name, err)
	}
	f.CreateMembership(ctx, m.ID, managerID, models.RoleManager)
	return m
}

// CreateMembership inserts a membership row with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, messID, userID primitive.ObjectID, role string) models.Membership {
	f.t.Helper()
	m := models.Membership{
		ID:       primitive.NewObjectID(),
		MessID:   messID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture membership: %v", err)
	}
	return m
}

// CreateMeal inserts one day's meal entry.
func (f *Fixtures) CreateMeal(ctx context.Context, messID, userID primitive.ObjectID, date time.Time, breakfast, lunch, dinner int) models.Meal {
	f.t.Helper()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	m := models.Meal{
		ID:        primitive.NewObjectID(),
		MessID:    messID,
		UserID:    userID,
		Date:      day,
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
		Month:     int(day.Month()),
		Year:      day.Year(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("meals").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("fixture meal: %v", err)
	}
	return m
}

// CreateExpense inserts a shared expense.
func (f *Fixtures) CreateExpense(ctx context.Context, messID primitive.ObjectID, amount string, date time.Time, createdBy primitive.ObjectID) models.Expense {
	f.t.Helper()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	e := models.Expense{
		ID:          primitive.NewObjectID(),
		MessID:      messID,
		Amount:      f.decimal128(amount),
		Description: "test expense",
		Date:        day,
		CreatedBy:   createdBy,
		Month:       int(day.Month()),
		Year:        day.Year(),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("expenses").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("fixture expense: %v", err)
	}
	return e
}

// CreateDeposit inserts a member deposit.
func (f *Fixtures) CreateDeposit(ctx context.Context, messID, userID primitive.ObjectID, amount string, date time.Time) models.Deposit {
	f.t.Helper()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	d := models.Deposit{
		ID:        primitive.NewObjectID(),
		MessID:    messID,
		UserID:    userID,
		Amount:    f.decimal128(amount),
		Date:      day,
		Month:     int(day.Month()),
		Year:      day.Year(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("deposits").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("fixture deposit: %v", err)
	}
	return d
}

func (f *Fixtures) decimal128(amount string) primitive.Decimal128 {
	f.t.Helper()
	d, err := decimal.NewFromString(amount)
	if err != nil {
		f.t.Fatalf("fixture amount %q: %v", amount, err)
	}
	v, err := money.ToDecimal128(d)
	if err != nil {
		f.t.Fatalf("fixture amount %q: %v", amount, err)
	}
	return v
}

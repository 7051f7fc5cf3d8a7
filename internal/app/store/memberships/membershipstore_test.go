package membershipstore_test

import (
	"errors"
	"testing"
	"time"

	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/indexes"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestJoin_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)

	if err := store.Join(ctx, mess.ID, member.ID); err != nil {
		t.Fatalf("first join: %v", err)
	}

	err := store.Join(ctx, mess.ID, member.ID)
	if !errors.Is(err, membershipstore.ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestRequireManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	outsider := fixtures.CreateUser(ctx, "outsider")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	if _, err := store.RequireManager(ctx, mess.ID, manager.ID); err != nil {
		t.Errorf("manager should pass: %v", err)
	}
	if _, err := store.RequireManager(ctx, mess.ID, member.ID); !errors.Is(err, membershipstore.ErrNotManager) {
		t.Errorf("member: expected ErrNotManager, got %v", err)
	}
	if _, err := store.RequireManager(ctx, mess.ID, outsider.ID); !errors.Is(err, membershipstore.ErrNotManager) {
		t.Errorf("outsider: expected ErrNotManager, got %v", err)
	}
	if _, err := store.RequireMember(ctx, mess.ID, outsider.ID); !errors.Is(err, membershipstore.ErrNotMember) {
		t.Errorf("outsider: expected ErrNotMember, got %v", err)
	}
}

func TestRemoveWithPurge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)
	fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	fixtures.CreateMeal(ctx, mess.ID, member.ID, day, 1, 1, 1)
	fixtures.CreateMeal(ctx, mess.ID, member.ID, day.AddDate(0, 0, 1), 0, 1, 0)
	fixtures.CreateDeposit(ctx, mess.ID, member.ID, "500.00", day)

	// Meals from another mess must survive the purge.
	other := fixtures.CreateMess(ctx, "Other House", "222222", manager.ID)
	fixtures.CreateMembership(ctx, other.ID, member.ID, models.RoleMember)
	fixtures.CreateMeal(ctx, other.ID, member.ID, day, 1, 0, 0)

	if err := store.RemoveWithPurge(ctx, mess.ID, manager.ID, member.ID); err != nil {
		t.Fatalf("RemoveWithPurge: %v", err)
	}

	filter := bson.M{"mess_id": mess.ID, "user_id": member.ID}
	for _, coll := range []string{"memberships", "meals", "deposits"} {
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 rows after purge, got %d", coll, n)
		}
	}

	n, err := db.Collection("meals").CountDocuments(ctx, bson.M{"mess_id": other.ID, "user_id": member.ID})
	if err != nil {
		t.Fatalf("count other meals: %v", err)
	}
	if n != 1 {
		t.Errorf("other mess meals: expected 1, got %d", n)
	}
}

func TestRemoveWithPurge_SelfRemoval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)

	err := store.RemoveWithPurge(ctx, mess.ID, manager.ID, manager.ID)
	if !errors.Is(err, membershipstore.ErrSelfRemoval) {
		t.Errorf("expected ErrSelfRemoval, got %v", err)
	}
}

func TestTransferManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	member := fixtures.CreateUser(ctx, "member")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)
	target := fixtures.CreateMembership(ctx, mess.ID, member.ID, models.RoleMember)

	if err := store.TransferManager(ctx, mess.ID, manager.ID, target.ID); err != nil {
		t.Fatalf("TransferManager: %v", err)
	}

	// Exactly one manager afterwards, and it is the target.
	n, err := store.CountByMess(ctx, mess.ID, models.RoleManager)
	if err != nil {
		t.Fatalf("CountByMess: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 manager, got %d", n)
	}
	if _, err := store.RequireManager(ctx, mess.ID, member.ID); err != nil {
		t.Errorf("target should now be manager: %v", err)
	}
	if _, err := store.RequireManager(ctx, mess.ID, manager.ID); !errors.Is(err, membershipstore.ErrNotManager) {
		t.Errorf("old manager should be demoted, got %v", err)
	}
}

func TestTransferManager_ToSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	store := membershipstore.New(db)

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "111111", manager.ID)

	own, err := store.Get(ctx, mess.ID, manager.ID)
	if err != nil {
		t.Fatalf("Get own membership: %v", err)
	}

	if err := store.TransferManager(ctx, mess.ID, manager.ID, own.ID); !errors.Is(err, membershipstore.ErrSameUser) {
		t.Errorf("expected ErrSameUser, got %v", err)
	}
}

// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/PallabGomasta/messhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c        *mongo.Collection
	meals    *mongo.Collection
	deposits *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("memberships"),
		meals:    db.Collection("meals"),
		deposits: db.Collection("deposits"),
	}
}

var (
	ErrAlreadyMember = errors.New("user is already a member of this mess")
	ErrNotManager    = errors.New("user is not a manager of this mess")
	ErrNotMember     = errors.New("user is not a member of this mess")
	ErrSelfRemoval   = errors.New("managers cannot remove themselves")
	ErrSameUser      = errors.New("cannot transfer the manager role to yourself")
)

// Join inserts a member-role membership. The unique index on
// (mess_id, user_id) makes re-joining surface as ErrAlreadyMember.
func (s *Store) Join(ctx context.Context, messID, userID primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, models.Membership{
		ID:       primitive.NewObjectID(),
		MessID:   messID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// Get returns the membership for (messID, userID).
func (s *Store) Get(ctx context.Context, messID, userID primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"mess_id": messID, "user_id": userID}).Decode(&m)
	return m, err
}

// GetByID returns a membership by its document ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	return m, err
}

// ListByMess returns a mess's memberships ordered by join time.
func (s *Store) ListByMess(ctx context.Context, messID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"mess_id": messID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns a user's memberships across all messes, newest
// join first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// RequireMember returns the membership, or ErrNotMember when the user
// has none for this mess.
func (s *Store) RequireMember(ctx context.Context, messID, userID primitive.ObjectID) (models.Membership, error) {
	m, err := s.Get(ctx, messID, userID)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, ErrNotMember
	}
	return m, err
}

// RequireManager returns the membership if the user is a manager of
// the mess; ErrNotManager otherwise.
func (s *Store) RequireManager(ctx context.Context, messID, userID primitive.ObjectID) (models.Membership, error) {
	m, err := s.Get(ctx, messID, userID)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, ErrNotManager
	}
	if err != nil {
		return models.Membership{}, err
	}
	if m.Role != models.RoleManager {
		return models.Membership{}, ErrNotManager
	}
	return m, nil
}

// CountByMess returns how many memberships a mess has, optionally
// filtered by role.
func (s *Store) CountByMess(ctx context.Context, messID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"mess_id": messID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// RemoveWithPurge removes targetID from the mess and deletes their
// meal and deposit records for it. The actor must be a manager and
// may not remove themself. Run inside txn.Run: the membership delete
// and both purges must commit together, or the mess's books would
// keep charging remaining members for a ghost's meals.
func (s *Store) RemoveWithPurge(ctx context.Context, messID, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return ErrSelfRemoval
	}
	if _, err := s.RequireManager(ctx, messID, actorID); err != nil {
		return err
	}
	if _, err := s.RequireMember(ctx, messID, targetID); err != nil {
		return err
	}

	filter := bson.M{"mess_id": messID, "user_id": targetID}
	if _, err := s.meals.DeleteMany(ctx, filter); err != nil {
		return err
	}
	if _, err := s.deposits.DeleteMany(ctx, filter); err != nil {
		return err
	}
	_, err := s.c.DeleteOne(ctx, filter)
	return err
}

// TransferManager swaps roles: the actor drops to member and the
// target membership becomes manager. The target must be a different
// membership of the same mess. Run inside txn.Run so the mess never
// observes zero managers.
func (s *Store) TransferManager(ctx context.Context, messID, actorID, targetMembershipID primitive.ObjectID) error {
	actor, err := s.RequireManager(ctx, messID, actorID)
	if err != nil {
		return err
	}

	target, err := s.GetByID(ctx, targetMembershipID)
	if err == mongo.ErrNoDocuments {
		return ErrNotMember
	}
	if err != nil {
		return err
	}
	if target.MessID != messID {
		return ErrNotMember
	}
	if target.UserID == actorID {
		return ErrSameUser
	}

	if _, err := s.c.UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{"$set": bson.M{"role": models.RoleManager}},
	); err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": actor.ID},
		bson.M{"$set": bson.M{"role": models.RoleMember}},
	)
	return err
}

// MemberUserIDs returns the user IDs of all current members of a mess.
// The notification fan-out on expense creation uses this.
func (s *Store) MemberUserIDs(ctx context.Context, messID primitive.ObjectID) ([]primitive.ObjectID, error) {
	memberships, err := s.ListByMess(ctx, messID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// internal/app/store/messes/messstore.go
package messstore

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/PallabGomasta/messhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
	newCode     func() string
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("messes"),
		memberships: db.Collection("memberships"),
		newCode:     generateCode,
	}
}

// CodeAttempts bounds the regenerate-on-collision loop. With a million
// possible codes, hitting this means something is very wrong.
const CodeAttempts = 10

var ErrCodeExhausted = errors.New("could not generate a unique mess code")

// generateCode returns a random 6-digit numeric join code. The code is
// the only thing standing between a stranger and a mess's finances, so
// it comes from crypto/rand.
func generateCode() string {
	n, err := crand.Int(crand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10)
}

// A TxnRunner executes fn atomically, typically by wrapping txn.Run.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// CreateWithManager inserts a mess with a fresh unique code and the
// creator's manager membership, committed together via run. A
// duplicate-key error on the code's unique index aborts the whole
// transaction on replica sets, so each code attempt gets its own run
// invocation rather than retrying the insert in place.
func (s *Store) CreateWithManager(ctx context.Context, name, address string, creator primitive.ObjectID, run TxnRunner) (models.Mess, error) {
	now := time.Now().UTC()
	m := models.Mess{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < CodeAttempts; attempt++ {
		m.Code = s.newCode()
		err := run(ctx, func(ctx context.Context) error {
			if _, err := s.c.InsertOne(ctx, m); err != nil {
				return err
			}
			_, err := s.memberships.InsertOne(ctx, models.Membership{
				ID:       primitive.NewObjectID(),
				MessID:   m.ID,
				UserID:   creator,
				Role:     models.RoleManager,
				JoinedAt: now,
			})
			return err
		})
		if err == nil {
			return m, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Mess{}, err
		}
	}
	return models.Mess{}, ErrCodeExhausted
}

// GetByID returns the mess with the given ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Mess, error) {
	var m models.Mess
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	return m, err
}

// GetByCode returns the mess with the given join code.
func (s *Store) GetByCode(ctx context.Context, code string) (models.Mess, error) {
	var m models.Mess
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&m)
	return m, err
}

// Update sets the mess's name and address.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, address string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"address":    address,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// GetMany returns the messes with the given IDs, keyed by ID.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Mess, error) {
	out := make(map[primitive.ObjectID]models.Mess, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m models.Mess
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, cur.Err()
}

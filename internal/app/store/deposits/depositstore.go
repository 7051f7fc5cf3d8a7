// internal/app/store/deposits/depositstore.go
package depositstore

import (
	"context"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("deposits")}
}

// Create inserts a member deposit. Month and year are derived from the
// date. Negative amounts are accepted as corrections.
func (s *Store) Create(ctx context.Context, messID, userID primitive.ObjectID, amount decimal.Decimal, date time.Time) (models.Deposit, error) {
	amt, err := money.ToDecimal128(amount)
	if err != nil {
		return models.Deposit{}, err
	}
	day := dayUTC(date)

	d := models.Deposit{
		ID:        primitive.NewObjectID(),
		MessID:    messID,
		UserID:    userID,
		Amount:    amt,
		Date:      day,
		Month:     int(day.Month()),
		Year:      day.Year(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Deposit{}, err
	}
	return d, nil
}

// ListForRange returns a mess's deposits with date in [from, to),
// newest first. Pass a non-nil userID to scope to one member.
func (s *Store) ListForRange(ctx context.Context, messID primitive.ObjectID, userID *primitive.ObjectID, from, to time.Time) ([]models.Deposit, error) {
	filter := bson.M{
		"mess_id": messID,
		"date":    bson.M{"$gte": from, "$lt": to},
	}
	if userID != nil {
		filter["user_id"] = *userID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var deposits []models.Deposit
	if err := cur.All(ctx, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

// DeleteByMember removes all of a member's deposits for a mess.
func (s *Store) DeleteByMember(ctx context.Context, messID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"mess_id": messID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// internal/app/store/meals/mealstore.go
package mealstore

import (
	"context"
	"errors"
	"time"

	"github.com/PallabGomasta/messhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meals")}
}

var ErrNegativeCount = errors.New("meal counts cannot be negative")

// DayUTC truncates t to UTC midnight, the canonical Meal date.
func DayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Upsert writes the member's counts for a day. The unique index on
// (mess_id, user_id, date) keys the upsert, so re-submitting a day
// replaces the counts (last writer wins). Month and year are derived
// from the date here and never accepted from callers.
func (s *Store) Upsert(ctx context.Context, messID, userID primitive.ObjectID, date time.Time, breakfast, lunch, dinner int) (models.Meal, error) {
	if breakfast < 0 || lunch < 0 || dinner < 0 {
		return models.Meal{}, ErrNegativeCount
	}
	day := DayUTC(date)
	now := time.Now().UTC()

	filter := bson.M{"mess_id": messID, "user_id": userID, "date": day}
	update := bson.M{
		"$set": bson.M{
			"breakfast":  breakfast,
			"lunch":      lunch,
			"dinner":     dinner,
			"month":      int(day.Month()),
			"year":       day.Year(),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var m models.Meal
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		return models.Meal{}, err
	}
	return m, nil
}

// GetForDay returns the member's meal record for a day, if any.
func (s *Store) GetForDay(ctx context.Context, messID, userID primitive.ObjectID, date time.Time) (models.Meal, error) {
	var m models.Meal
	err := s.c.FindOne(ctx, bson.M{
		"mess_id": messID,
		"user_id": userID,
		"date":    DayUTC(date),
	}).Decode(&m)
	return m, err
}

// ListForUserRange returns the member's meal records with date in
// [from, to), oldest first.
func (s *Store) ListForUserRange(ctx context.Context, messID, userID primitive.ObjectID, from, to time.Time) ([]models.Meal, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"mess_id": messID,
		"user_id": userID,
		"date":    bson.M{"$gte": from, "$lt": to},
	}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meals []models.Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// TotalForUserRange sums the member's meal units with date in [from, to).
func (s *Store) TotalForUserRange(ctx context.Context, messID, userID primitive.ObjectID, from, to time.Time) (int64, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"mess_id": messID,
			"user_id": userID,
			"date":    bson.M{"$gte": from, "$lt": to},
		}},
		{"$group": bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{
				"$add": []string{"$breakfast", "$lunch", "$dinner"},
			}},
		}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		return row.Total, nil
	}
	return 0, cur.Err()
}

// DeleteByMember removes all of a member's meal records for a mess.
func (s *Store) DeleteByMember(ctx context.Context, messID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"mess_id": messID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// internal/app/store/expenses/expensestore.go
package expensestore

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
	return &Store{c: db.Collection("expenses")}
}

// Create inserts a mess expense. Month and year are derived from the
// date. Negative amounts are accepted as corrections.
func (s *Store) Create(ctx context.Context, messID primitive.ObjectID, amount decimal.Decimal, description string, date time.Time, createdBy primitive.ObjectID) (models.Expense, error) {
	amt, err := money.ToDecimal128(amount)
	if err != nil {
		return models.Expense{}, err
	}
	day := dayUTC(date)

	e := models.Expense{
		ID:          primitive.NewObjectID(),
		MessID:      messID,
		Amount:      amt,
		Description: description,
		Date:        day,
		CreatedBy:   createdBy,
		Month:       int(day.Month()),
		Year:        day.Year(),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// ListForRange returns expenses with date in [from, to), newest first.
func (s *Store) ListForRange(ctx context.Context, messID primitive.ObjectID, from, to time.Time) ([]models.Expense, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"mess_id": messID,
		"date":    bson.M{"$gte": from, "$lt": to},
	}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var expenses []models.Expense
	if err := cur.All(ctx, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func dayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

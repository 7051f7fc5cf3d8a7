// Package ledgerqueries provides the read-only aggregations the ledger
// report is built from. All sums run server-side; money stays
// Decimal128 end to end.
package ledgerqueries

import (
	"context"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MealTotalsPerUser sums breakfast+lunch+dinner per user for meals with
// date in [from, to).
func MealTotalsPerUser(ctx context.Context, db *mongo.Database, messID primitive.ObjectID, from, to time.Time) (map[primitive.ObjectID]int64, error) {
	result := make(map[primitive.ObjectID]int64)

	cur, err := db.Collection("meals").Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"mess_id": messID,
			"date":    bson.M{"$gte": from, "$lt": to},
		}},
		{"$group": bson.M{
			"_id": "$user_id",
			"total": bson.M{"$sum": bson.M{
				"$add": []string{"$breakfast", "$lunch", "$dinner"},
			}},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Total int64              `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.Total
	}
	return result, cur.Err()
}

// ExpenseTotal sums expense amounts with date in [from, to).
func ExpenseTotal(ctx context.Context, db *mongo.Database, messID primitive.ObjectID, from, to time.Time) (decimal.Decimal, error) {
	cur, err := db.Collection("expenses").Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"mess_id": messID,
			"date":    bson.M{"$gte": from, "$lt": to},
		}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}},
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Total primitive.Decimal128 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return decimal.Decimal{}, err
		}
		return money.FromDecimal128(row.Total)
	}
	return money.Zero, cur.Err()
}

// DepositTotalsPerUser sums deposit amounts per user for deposits with
// date in [from, to).
func DepositTotalsPerUser(ctx context.Context, db *mongo.Database, messID primitive.ObjectID, from, to time.Time) (map[primitive.ObjectID]decimal.Decimal, error) {
	result := make(map[primitive.ObjectID]decimal.Decimal)

	cur, err := db.Collection("deposits").Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"mess_id": messID,
			"date":    bson.M{"$gte": from, "$lt": to},
		}},
		{"$group": bson.M{
			"_id":   "$user_id",
			"total": bson.M{"$sum": "$amount"},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID   `bson:"_id"`
			Total primitive.Decimal128 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		d, err := money.FromDecimal128(row.Total)
		if err != nil {
			return nil, err
		}
		result[row.ID] = d
	}
	return result, cur.Err()
}

// internal/domain/models/meal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal holds one member's meal counts for a single day in a mess.
// Exactly one document per (mess_id, user_id, date); writes go through
// the store's upsert keyed by that triple.
//
// Month and Year are denormalized from Date at write time for fast
// period filtering. They are never authoritative on their own.
type Meal struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessID primitive.ObjectID `bson:"mess_id" json:"mess_id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date   time.Time          `bson:"date" json:"date"` // UTC midnight

	Breakfast int `bson:"breakfast" json:"breakfast"`
	Lunch     int `bson:"lunch" json:"lunch"`
	Dinner    int `bson:"dinner" json:"dinner"`

	Month int `bson:"month" json:"month"`
	Year  int `bson:"year" json:"year"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TotalMeals returns the day's meal units (breakfast + lunch + dinner).
func (m Meal) TotalMeals() int {
	return m.Breakfast + m.Lunch + m.Dinner
}

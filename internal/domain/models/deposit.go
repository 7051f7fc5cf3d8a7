// internal/domain/models/deposit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deposit is a member's payment into the mess fund. Negative amounts
// are adjustments, same as Expense.
type Deposit struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	MessID primitive.ObjectID   `bson:"mess_id" json:"mess_id"`
	UserID primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Amount primitive.Decimal128 `bson:"amount" json:"amount"`
	Date   time.Time            `bson:"date" json:"date"` // UTC midnight

	Month int `bson:"month" json:"month"`
	Year  int `bson:"year" json:"year"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

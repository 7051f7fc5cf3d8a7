// internal/domain/models/expense.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense is a mess-wide cost entry. Amount is stored as Decimal128 so
// sums aggregate exactly; negative amounts are adjustments (refunds or
// corrections) and flow through report sums unchanged.
type Expense struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	MessID      primitive.ObjectID   `bson:"mess_id" json:"mess_id"`
	Amount      primitive.Decimal128 `bson:"amount" json:"amount"`
	Description string               `bson:"description" json:"description"`
	Date        time.Time            `bson:"date" json:"date"` // UTC midnight
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`

	Month int `bson:"month" json:"month"`
	Year  int `bson:"year" json:"year"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

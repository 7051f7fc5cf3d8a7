// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles.
const (
	RoleManager = "manager"
	RoleMember  = "member"
)

// Membership is the authoritative join between users and messes.
// Exactly one document per (mess_id, user_id); role is a scalar
// ("manager"|"member"). A mess may have several managers, but a user
// holds at most one membership per mess.
//
// Deleting a membership must go through the store's RemoveWithPurge so
// the member's meal and deposit history for that mess is purged in the
// same transaction.
type Membership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessID   primitive.ObjectID `bson:"mess_id" json:"mess_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

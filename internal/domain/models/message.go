// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a post on a mess's shared board. Listings are newest-first.
type Message struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessID  primitive.ObjectID `bson:"mess_id" json:"mess_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content string             `bson:"content" json:"content"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

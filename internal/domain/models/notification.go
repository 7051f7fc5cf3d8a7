// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyInfo    = "info"
	NotifyWarning = "warning"
	NotifyAlert   = "alert"
	NotifySuccess = "success"
)

// Notification is a per-user informational record, created as a side
// effect of meal/expense/deposit writes. Only the read flag mutates.
type Notification struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID  `bson:"user_id" json:"user_id"`
	MessID  *primitive.ObjectID `bson:"mess_id,omitempty" json:"mess_id,omitempty"`
	Title   string              `bson:"title" json:"title"`
	Message string              `bson:"message" json:"message"`
	Type    string              `bson:"type" json:"type"` // info | warning | alert | success
	IsRead  bool                `bson:"is_read" json:"is_read"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

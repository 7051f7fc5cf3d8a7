// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"time"

	"github.com/PallabGomasta/messhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit caps board listings.
const DefaultLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create posts a message to the mess board. Content is expected to be
// sanitized by the caller.
func (s *Store) Create(ctx context.Context, messID, userID primitive.ObjectID, content string) (models.Message, error) {
	m := models.Message{
		ID:        primitive.NewObjectID(),
		MessID:    messID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListByMess returns the newest posts first, capped at limit
// (DefaultLimit when limit <= 0).
func (s *Store) ListByMess(ctx context.Context, messID primitive.ObjectID, limit int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cur, err := s.c.Find(ctx, bson.M{"mess_id": messID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

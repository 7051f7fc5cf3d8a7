// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionFetcher returns the auth.UserFetcher that resolves the
// session's user ID to the display fields cached in request context.
func SessionFetcher(db *mongo.Database) auth.UserFetcher {
	store := New(db)
	return func(ctx context.Context, userID string) (*auth.SessionUser, error) {
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()

		u, err := store.GetByID(ctx, oid)
		if err != nil {
			return nil, err
		}
		return &auth.SessionUser{ID: u.ID.Hex(), Name: u.Username}, nil
	}
}

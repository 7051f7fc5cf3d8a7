// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the signed-in user's display name, Mongo ObjectID,
// and a found flag. If no user is present or the session's user ID is
// malformed, it returns "", NilObjectID, false, so ok=true always
// means a valid authenticated user with a valid ObjectID.
//
// There is no global role here. Whether a user may manage a mess is a
// per-mess question answered by the membership store.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

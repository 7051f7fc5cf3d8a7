// internal/app/features/messes/handler.go
package messes

import (
	"net/http"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	messstore "github.com/PallabGomasta/messhub/internal/app/store/messes"
	userstore "github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Messes      *messstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Messes:      messstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
	}
}

// messIDParam parses the {id} route parameter.
func messIDParam(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

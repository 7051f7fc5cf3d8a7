// internal/app/features/accounts/handler.go
package accounts

import (
	"net/http"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	depositstore "github.com/PallabGomasta/messhub/internal/app/store/deposits"
	expensestore "github.com/PallabGomasta/messhub/internal/app/store/expenses"
	mealstore "github.com/PallabGomasta/messhub/internal/app/store/meals"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	messstore "github.com/PallabGomasta/messhub/internal/app/store/messes"
	userstore "github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/PallabGomasta/messhub/internal/app/system/clock"
	"github.com/PallabGomasta/messhub/internal/app/system/notify"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// dateLayout is the wire format of <input type="date">.
const dateLayout = "2006-01-02"

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Clock       clock.Clock
	Messes      *messstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Meals       *mealstore.Store
	Expenses    *expensestore.Store
	Deposits    *depositstore.Store
	Notifier    *notify.Notifier
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Clock:       clock.Real{},
		Messes:      messstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		Meals:       mealstore.New(db),
		Expenses:    expensestore.New(db),
		Deposits:    depositstore.New(db),
		Notifier:    notify.New(db, logger),
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

// parseDate parses an entry date, defaulting to today when the field is
// empty.
func (h *Handler) parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return h.Clock.Now(), true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

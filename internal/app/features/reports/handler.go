// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/clock"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Clock       clock.Clock
	Aggregator  *ledger.Aggregator
	Memberships *membershipstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Clock:       clock.Real{},
		Aggregator:  ledger.New(db, logger),
		Memberships: membershipstore.New(db),
	}
}

// loadReport resolves the period, checks membership, and computes the
// report. Both the HTML page and the PDF export go through here so the
// two renderings can never disagree.
func (h *Handler) loadReport(w http.ResponseWriter, r *http.Request) (*ledger.Report, bool) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}

	messID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Memberships.RequireMember(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotMember) {
			uierrors.RenderForbidden(w, r, "You are not a member of this mess.", "/dashboard")
			return nil, false
		}
		h.ErrLog.LogServerError(w, r, "membership lookup failed", err, "A database error occurred.", "/dashboard")
		return nil, false
	}

	month, year := ledger.ResolveMonthYear(r.URL.Query().Get("month"), r.URL.Query().Get("year"), h.Clock)
	from, to, err := ledger.MonthWindow(month, year)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad period", err, "Invalid month or year.", "/dashboard")
		return nil, false
	}

	report, err := h.Aggregator.Compute(ctx, messID, from, to)
	switch {
	case err == nil:
		return report, true
	case errors.Is(err, ledger.ErrMessNotFound) || err == mongo.ErrNoDocuments:
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
	case errors.Is(err, ledger.ErrInvalidRange):
		h.ErrLog.LogBadRequest(w, r, "bad report range", err, "Invalid report period.", "/dashboard")
	default:
		h.ErrLog.LogServerError(w, r, "compute report failed", err, "Unable to build the report.", "/dashboard")
	}
	return nil, false
}

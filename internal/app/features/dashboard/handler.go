// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	messstore "github.com/PallabGomasta/messhub/internal/app/store/messes"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/clock"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Memberships *membershipstore.Store
	Messes      *messstore.Store
	Ledger      *ledger.Aggregator
	Clock       clock.Clock
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Memberships: membershipstore.New(db),
		Messes:      messstore.New(db),
		Ledger:      ledger.New(db, logger),
		Clock:       clock.Real{},
	}
}

// messCard is one mess on the dashboard.
type messCard struct {
	ID        string
	Name      string
	Address   string
	Code      string
	Role      string
	IsManager bool
	Summary   *monthSummary
}

type pageData struct {
	viewdata.BaseVM
	Messes []messCard
}

// ServeDashboard lists every mess the user belongs to, with their role
// and a current-month summary on each card. Managers see the join code
// and the mess-wide totals; members see their own meals and balance.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list memberships failed", err, "A database error occurred.", "/")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.MessID)
	}
	messes, err := h.Messes.GetMany(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load messes failed", err, "A database error occurred.", "/")
		return
	}

	month, year := ledger.ResolveMonthYear("", "", h.Clock)
	from, to, err := ledger.MonthWindow(month, year)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve current month failed", err, "A database error occurred.", "/")
		return
	}

	cards := make([]messCard, 0, len(memberships))
	for _, m := range memberships {
		mess, found := messes[m.MessID]
		if !found {
			continue
		}
		card := messCard{
			ID:        mess.ID.Hex(),
			Name:      mess.Name,
			Address:   mess.Address,
			Role:      m.Role,
			IsManager: m.Role == models.RoleManager,
		}
		if card.IsManager {
			card.Code = mess.Code
		}

		report, err := h.Ledger.Compute(ctx, m.MessID, from, to)
		if err != nil {
			h.Log.Warn("dashboard summary failed",
				zap.String("mess_id", m.MessID.Hex()), zap.Error(err))
		} else {
			card.Summary = buildSummary(report, userID, card.IsManager)
		}
		cards = append(cards, card)
	}

	templates.Render(w, r, "dashboard", pageData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Dashboard", "/"),
		Messes: cards,
	})
}

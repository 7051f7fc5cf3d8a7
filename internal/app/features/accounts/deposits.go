// internal/app/features/accounts/deposits.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type depositRow struct {
	Date   time.Time
	Member string
	Amount string
}

type depositsPageData struct {
	viewdata.BaseVM
	Error      string
	MessID     string
	MessName   string
	Month      int
	Year       int
	Today      string
	IsManager  bool
	Members    []memberOption // manager only: entry form target
	Deposits   []depositRow
	MonthTotal string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /accounts/{id}/deposits                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDeposits lists the month's deposits. The manager sees every
// member's deposits and the entry form; members see only their own.
func (h *Handler) ServeDeposits(w http.ResponseWriter, r *http.Request) {
	h.renderDeposits(w, r, "")
}

func (h *Handler) renderDeposits(w http.ResponseWriter, r *http.Request, formError string) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	messID, ok := messIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	own, err := h.Memberships.RequireMember(ctx, messID, userID)
	if errors.Is(err, membershipstore.ErrNotMember) {
		uierrors.RenderForbidden(w, r, "You are not a member of this mess.", "/dashboard")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership lookup failed", err, "A database error occurred.", "/dashboard")
		return
	}
	isManager := own.Role == models.RoleManager

	mess, err := h.Messes.GetByID(ctx, messID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load mess failed", err, "A database error occurred.", "/dashboard")
		return
	}

	month, year := ledger.ResolveMonthYear(query.Get(r, "month"), query.Get(r, "year"), h.Clock)
	from, to, err := ledger.MonthWindow(month, year)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad period", err, "Invalid month or year.", "/dashboard")
		return
	}

	// Members only see their own deposits.
	var scope *primitive.ObjectID
	if !isManager {
		scope = &userID
	}
	deposits, err := h.Deposits.ListForRange(ctx, messID, scope, from, to)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list deposits failed", err, "A database error occurred.", "/dashboard")
		return
	}

	memberIDs := make([]primitive.ObjectID, 0, len(deposits))
	for _, d := range deposits {
		memberIDs = append(memberIDs, d.UserID)
	}
	users, err := h.Users.GetMany(ctx, memberIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load users failed", err, "A database error occurred.", "/dashboard")
		return
	}

	total := money.Zero
	rows := make([]depositRow, 0, len(deposits))
	for _, d := range deposits {
		amt, err := money.FromDecimal128(d.Amount)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "decode deposit amount", err, "A database error occurred.", "/dashboard")
			return
		}
		total = total.Add(amt)
		member := ""
		if u, found := users[d.UserID]; found {
			member = u.Username
		}
		rows = append(rows, depositRow{
			Date:   d.Date,
			Member: member,
			Amount: money.Format(amt),
		})
	}

	data := depositsPageData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Deposits · "+mess.Name, "/messes/"+messID.Hex()),
		Error:      formError,
		MessID:     messID.Hex(),
		MessName:   mess.Name,
		Month:      month,
		Year:       year,
		Today:      h.Clock.Now().UTC().Format(dateLayout),
		IsManager:  isManager,
		Deposits:   rows,
		MonthTotal: money.Format(total),
	}

	if isManager {
		data.Members, err = h.memberOptions(ctx, messID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load members failed", err, "A database error occurred.", "/dashboard")
			return
		}
	}

	templates.Render(w, r, "accounts_deposits", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /accounts/{id}/deposits                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDepositPost records a member's deposit. Manager only: the
// manager collects the cash, so the manager enters it.
func (h *Handler) HandleDepositPost(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	messID, ok := messIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return
	}
	back := "/accounts/" + messID.Hex() + "/deposits"

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can record deposits.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

	target, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad target user id", err, "Invalid member.", back)
		return
	}
	if _, err := h.Memberships.RequireMember(ctx, messID, target); err != nil {
		uierrors.RenderForbidden(w, r, "That user is not a member of this mess.", back)
		return
	}

	amount, err := money.Parse(r.FormValue("amount"))
	if err != nil {
		h.renderDeposits(w, r, "Invalid amount.")
		return
	}

	date, ok := h.parseDate(r.FormValue("date"))
	if !ok {
		h.renderDeposits(w, r, "Invalid date.")
		return
	}

	deposit, err := h.Deposits.Create(ctx, messID, target, amount, date)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create deposit failed", err, "Unable to save the deposit.", back)
		return
	}

	h.Log.Info("deposit recorded",
		zap.String("mess_id", messID.Hex()),
		zap.String("deposit_id", deposit.ID.Hex()),
		zap.String("user_id", target.Hex()),
		zap.String("amount", money.Format(amount)))

	if mess, err := h.Messes.GetByID(ctx, messID); err == nil {
		h.Notifier.DepositRecorded(r.Context(), mess, target, amount)
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

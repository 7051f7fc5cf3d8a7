// internal/app/features/accounts/expenses.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type expenseRow struct {
	Date        time.Time
	Description string
	Amount      string
	CreatedBy   string
}

type expensesPageData struct {
	viewdata.BaseVM
	Error      string
	MessID     string
	MessName   string
	Month      int
	Year       int
	Today      string
	Expenses   []expenseRow
	MonthTotal string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /accounts/{id}/expenses                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeExpenses lists the month's expenses with the entry form.
// Manager only: members see expense totals through the report.
func (h *Handler) ServeExpenses(w http.ResponseWriter, r *http.Request) {
	h.renderExpenses(w, r, "")
}

func (h *Handler) renderExpenses(w http.ResponseWriter, r *http.Request, formError string) {
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

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can record expenses.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

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

	expenses, err := h.Expenses.ListForRange(ctx, messID, from, to)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list expenses failed", err, "A database error occurred.", "/dashboard")
		return
	}

	// Creator names for the listing.
	memberships, err := h.Memberships.ListByMess(ctx, messID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/dashboard")
		return
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load users failed", err, "A database error occurred.", "/dashboard")
		return
	}

	total := money.Zero
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		amt, err := money.FromDecimal128(e.Amount)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "decode expense amount", err, "A database error occurred.", "/dashboard")
			return
		}
		total = total.Add(amt)
		createdBy := ""
		if u, found := users[e.CreatedBy]; found {
			createdBy = u.Username
		}
		rows = append(rows, expenseRow{
			Date:        e.Date,
			Description: e.Description,
			Amount:      money.Format(amt),
			CreatedBy:   createdBy,
		})
	}

	templates.Render(w, r, "accounts_expenses", expensesPageData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Expenses · "+mess.Name, "/messes/"+messID.Hex()),
		Error:      formError,
		MessID:     messID.Hex(),
		MessName:   mess.Name,
		Month:      month,
		Year:       year,
		Today:      h.Clock.Now().UTC().Format(dateLayout),
		Expenses:   rows,
		MonthTotal: money.Format(total),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /accounts/{id}/expenses                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleExpensePost records a mess expense and fans a notification out
// to every current member.
func (h *Handler) HandleExpensePost(w http.ResponseWriter, r *http.Request) {
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
	back := "/accounts/" + messID.Hex() + "/expenses"

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can record expenses.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		h.renderExpenses(w, r, "Please describe the expense.")
		return
	}

	amount, err := money.Parse(r.FormValue("amount"))
	if err != nil {
		h.renderExpenses(w, r, "Invalid amount.")
		return
	}

	date, ok := h.parseDate(r.FormValue("date"))
	if !ok {
		h.renderExpenses(w, r, "Invalid date.")
		return
	}

	expense, err := h.Expenses.Create(ctx, messID, amount, description, date, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create expense failed", err, "Unable to save the expense.", back)
		return
	}

	h.Log.Info("expense recorded",
		zap.String("mess_id", messID.Hex()),
		zap.String("expense_id", expense.ID.Hex()),
		zap.String("amount", money.Format(amount)))

	if mess, err := h.Messes.GetByID(ctx, messID); err == nil {
		h.Notifier.ExpenseAdded(r.Context(), mess, amount, description)
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

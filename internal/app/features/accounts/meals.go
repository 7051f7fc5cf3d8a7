// internal/app/features/accounts/meals.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	mealstore "github.com/PallabGomasta/messhub/internal/app/store/meals"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mealDayRow struct {
	Date      time.Time
	Breakfast int
	Lunch     int
	Dinner    int
	Total     int
}

type memberOption struct {
	UserID string
	Name   string
}

type mealsPageData struct {
	viewdata.BaseVM
	Error      string
	MessID     string
	MessName   string
	Month      int
	Year       int
	Today      string
	IsManager  bool
	Members    []memberOption // manager only: record for someone else
	Days       []mealDayRow
	MonthTotal int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /accounts/{id}/meals                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeMeals shows the member's meal records for the selected month and
// the daily entry form.
func (h *Handler) ServeMeals(w http.ResponseWriter, r *http.Request) {
	h.renderMeals(w, r, "")
}

func (h *Handler) renderMeals(w http.ResponseWriter, r *http.Request, formError string) {
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

	meals, err := h.Meals.ListForUserRange(ctx, messID, userID, from, to)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list meals failed", err, "A database error occurred.", "/dashboard")
		return
	}

	var monthTotal int64
	days := make([]mealDayRow, 0, len(meals))
	for _, m := range meals {
		days = append(days, mealDayRow{
			Date:      m.Date,
			Breakfast: m.Breakfast,
			Lunch:     m.Lunch,
			Dinner:    m.Dinner,
			Total:     m.TotalMeals(),
		})
		monthTotal += int64(m.TotalMeals())
	}

	data := mealsPageData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Meals · "+mess.Name, "/messes/"+messID.Hex()),
		Error:      formError,
		MessID:     messID.Hex(),
		MessName:   mess.Name,
		Month:      month,
		Year:       year,
		Today:      h.Clock.Now().UTC().Format(dateLayout),
		IsManager:  own.Role == models.RoleManager,
		Days:       days,
		MonthTotal: monthTotal,
	}

	if data.IsManager {
		data.Members, err = h.memberOptions(ctx, messID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load members failed", err, "A database error occurred.", "/dashboard")
			return
		}
	}

	templates.Render(w, r, "accounts_meals", data)
}

func (h *Handler) memberOptions(ctx context.Context, messID primitive.ObjectID) ([]memberOption, error) {
	memberships, err := h.Memberships.ListByMess(ctx, messID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	opts := make([]memberOption, 0, len(memberships))
	for _, m := range memberships {
		if u, found := users[m.UserID]; found {
			opts = append(opts, memberOption{UserID: u.ID.Hex(), Name: u.Username})
		}
	}
	return opts, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /accounts/{id}/meals                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleMealPost upserts the day's counts. Only the manager records
// meals; the user_id field picks the member, defaulting to the
// manager's own row. Re-submitting a day replaces it (last writer
// wins).
func (h *Handler) HandleMealPost(w http.ResponseWriter, r *http.Request) {
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
	back := "/accounts/" + messID.Hex() + "/meals"

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can record meals.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

	// Default target is the manager's own row; user_id picks any member.
	target := userID
	if raw := r.FormValue("user_id"); raw != "" && raw != userID.Hex() {
		var err error
		target, err = primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad target user id", err, "Invalid member.", back)
			return
		}
		if _, err := h.Memberships.RequireMember(ctx, messID, target); err != nil {
			uierrors.RenderForbidden(w, r, "That user is not a member of this mess.", back)
			return
		}
	}

	date, ok := h.parseDate(r.FormValue("date"))
	if !ok {
		h.renderMeals(w, r, "Invalid date.")
		return
	}

	breakfast, err1 := parseCount(r.FormValue("breakfast"))
	lunch, err2 := parseCount(r.FormValue("lunch"))
	dinner, err3 := parseCount(r.FormValue("dinner"))
	if err1 != nil || err2 != nil || err3 != nil {
		h.renderMeals(w, r, "Meal counts must be non-negative whole numbers.")
		return
	}

	meal, err := h.Meals.Upsert(ctx, messID, target, date, breakfast, lunch, dinner)
	if err != nil {
		if errors.Is(err, mealstore.ErrNegativeCount) {
			h.renderMeals(w, r, "Meal counts must be non-negative whole numbers.")
			return
		}
		h.ErrLog.LogServerError(w, r, "meal upsert failed", err, "Unable to save the meals.", back)
		return
	}

	h.Log.Info("meals recorded",
		zap.String("mess_id", messID.Hex()),
		zap.String("user_id", target.Hex()),
		zap.Time("date", meal.Date))

	if mess, err := h.Messes.GetByID(ctx, messID); err == nil {
		h.Notifier.MealRecorded(r.Context(), mess, target, meal.Date, meal.TotalMeals())
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// parseCount parses a non-negative meal count; empty means zero.
func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, mealstore.ErrNegativeCount
	}
	return n, nil
}

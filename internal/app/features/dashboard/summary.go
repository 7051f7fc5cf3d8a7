// internal/app/features/dashboard/summary.go
package dashboard

import (
	"github.com/PallabGomasta/messhub/internal/app/ledger"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// monthSummary is the current-month block on a mess card. Managers see
// the mess-wide totals; members see their own meals, cost and balance.
type monthSummary struct {
	Manager  bool
	Period   string
	Meals    int64
	Expense  string
	Deposit  string
	MealRate string
	Cost     string
	Balance  string
	InDebt   bool
}

func buildSummary(report *ledger.Report, userID primitive.ObjectID, isManager bool) *monthSummary {
	s := &monthSummary{
		Manager:  isManager,
		Period:   report.From.Format("January 2006"),
		MealRate: money.Format(report.MealRate),
	}
	if isManager {
		s.Meals = report.GrandTotalMeals
		s.Expense = money.Format(report.TotalExpense)
		s.Deposit = money.Format(report.TotalDeposit)
		return s
	}
	s.Cost = money.Format(money.Zero)
	s.Deposit = money.Format(money.Zero)
	s.Balance = money.Format(money.Zero)
	for _, m := range report.Members {
		if m.UserID != userID {
			continue
		}
		s.Meals = m.Meals
		s.Cost = money.Format(m.Cost)
		s.Deposit = money.Format(m.Deposit)
		s.Balance = money.Format(m.Balance)
		s.InDebt = m.Balance.IsNegative()
		break
	}
	return s
}

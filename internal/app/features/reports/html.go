// internal/app/features/reports/html.go
package reports

import (
	"net/http"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/ledger"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type reportMemberVM struct {
	Name    string
	Role    string
	Meals   int64
	Cost    string
	Deposit string
	Balance string
	InDebt  bool
}

type reportPageData struct {
	viewdata.BaseVM
	MessID          string
	MessName        string
	Month           int
	Year            int
	PeriodLabel     string
	GrandTotalMeals int64
	TotalExpense    string
	TotalDeposit    string
	MealRate        string
	Members         []reportMemberVM
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /reports/{id}                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}

	templates.Render(w, r, "report", buildReportVM(r, report, h))
}

func buildReportVM(r *http.Request, report *ledger.Report, h *Handler) reportPageData {
	data := reportPageData{
		BaseVM:          viewdata.NewBaseVM(r, h.DB, "Report · "+report.Mess.Name, "/messes/"+report.Mess.ID.Hex()),
		MessID:          report.Mess.ID.Hex(),
		MessName:        report.Mess.Name,
		Month:           int(report.From.Month()),
		Year:            report.From.Year(),
		PeriodLabel:     periodLabel(report.From),
		GrandTotalMeals: report.GrandTotalMeals,
		TotalExpense:    money.Format(report.TotalExpense),
		TotalDeposit:    money.Format(report.TotalDeposit),
		MealRate:        money.Format(report.MealRate),
	}
	for _, m := range report.Members {
		data.Members = append(data.Members, reportMemberVM{
			Name:    m.Name,
			Role:    m.Role,
			Meals:   m.Meals,
			Cost:    money.Format(m.Cost),
			Deposit: money.Format(m.Deposit),
			Balance: money.Format(m.Balance),
			InDebt:  m.Balance.IsNegative(),
		})
	}
	return data
}

func periodLabel(from time.Time) string {
	return from.Format("January 2006")
}

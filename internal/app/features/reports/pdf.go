// internal/app/features/reports/pdf.go
package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/PallabGomasta/messhub/internal/app/ledger"
	"github.com/PallabGomasta/messhub/internal/app/system/money"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /reports/{id}/pdf                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeReportPDF renders the same report as an attachment download.
// The PDF is built fully in memory first; a generation failure surfaces
// an error page instead of a truncated download.
func (h *Handler) ServeReportPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := writeReportPDF(&buf, report); err != nil {
		h.ErrLog.LogServerError(w, r, "render report pdf failed", err, "Unable to generate the PDF.", "/reports/"+report.Mess.ID.Hex())
		return
	}

	filename := fmt.Sprintf("%s-%04d-%02d.pdf", report.Mess.Code, report.From.Year(), int(report.From.Month()))

	h.Log.Info("report pdf generated",
		zap.String("mess_id", report.Mess.ID.Hex()),
		zap.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func writeReportPDF(buf *bytes.Buffer, report *ledger.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(report.Mess.Name+" report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, report.Mess.Name)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Monthly report for "+periodLabel(report.From))
	pdf.Ln(12)

	// Summary block
	pdf.SetFont("Helvetica", "", 10)
	summary := [][2]string{
		{"Total meals", strconv.FormatInt(report.GrandTotalMeals, 10)},
		{"Total expense", money.Format(report.TotalExpense)},
		{"Total deposits", money.Format(report.TotalDeposit)},
		{"Meal rate", money.Format(report.MealRate)},
	}
	for _, row := range summary {
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, row[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Member table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	headers := []struct {
		label string
		width float64
		align string
	}{
		{"Member", 50, "L"},
		{"Role", 25, "L"},
		{"Meals", 20, "R"},
		{"Cost", 30, "R"},
		{"Deposit", 30, "R"},
		{"Balance", 30, "R"},
	}
	for _, col := range headers {
		pdf.CellFormat(col.width, 8, col.label, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range report.Members {
		pdf.CellFormat(50, 7, m.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, m.Role, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.FormatInt(m.Meals, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money.Format(m.Cost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money.Format(m.Deposit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money.Format(m.Balance), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(buf)
}

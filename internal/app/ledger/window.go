// internal/app/ledger/window.go
package ledger

import (
	"errors"
	"strconv"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/system/clock"
)

// ErrInvalidPeriod is returned by MonthWindow for a month outside 1-12
// or a year outside a sane range.
var ErrInvalidPeriod = errors.New("ledger: invalid month or year")

// MonthWindow returns the UTC half-open interval [start, end) covering
// the given calendar month. December rolls the end into January of the
// next year.
func MonthWindow(month, year int) (start, end time.Time, err error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	if month == 12 {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return start, end, nil
}

// ResolveMonthYear parses the month/year query values, defaulting each
// to the current month/year (per clk) when absent, unparseable, or out
// of range. The HTML report page and the PDF export both resolve their
// period through this.
func ResolveMonthYear(monthStr, yearStr string, clk clock.Clock) (month, year int) {
	now := clk.Now().UTC()
	month, year = int(now.Month()), now.Year()

	if m, err := strconv.Atoi(monthStr); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	if y, err := strconv.Atoi(yearStr); err == nil && y >= 1970 && y <= 9999 {
		year = y
	}
	return month, year
}

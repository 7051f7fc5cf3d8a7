package dashboard

import (
	"testing"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/ledger"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func marchReport() (*ledger.Report, primitive.ObjectID, primitive.ObjectID) {
	managerID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	return &ledger.Report{
		Mess:            models.Mess{Name: "Green House"},
		From:            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:              time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		GrandTotalMeals: 90,
		TotalExpense:    decimal.RequireFromString("4500.00"),
		TotalDeposit:    decimal.RequireFromString("4000.00"),
		MealRate:        decimal.RequireFromString("50.00"),
		Members: []ledger.MemberRow{
			{
				UserID:  managerID,
				Role:    models.RoleManager,
				Meals:   40,
				Cost:    decimal.RequireFromString("2000.00"),
				Deposit: decimal.RequireFromString("2500.00"),
				Balance: decimal.RequireFromString("500.00"),
			},
			{
				UserID:  memberID,
				Role:    models.RoleMember,
				Meals:   50,
				Cost:    decimal.RequireFromString("2500.00"),
				Deposit: decimal.RequireFromString("1500.00"),
				Balance: decimal.RequireFromString("-1000.00"),
			},
		},
	}, managerID, memberID
}

func TestBuildSummary_Manager(t *testing.T) {
	report, managerID, _ := marchReport()

	s := buildSummary(report, managerID, true)
	if !s.Manager {
		t.Error("expected a manager summary")
	}
	if s.Period != "March 2025" {
		t.Errorf("period: got %q", s.Period)
	}
	if s.Meals != 90 {
		t.Errorf("meals: got %d, want the mess-wide total 90", s.Meals)
	}
	if s.Expense != "4500.00" || s.Deposit != "4000.00" || s.MealRate != "50.00" {
		t.Errorf("totals: got expense %q deposit %q rate %q", s.Expense, s.Deposit, s.MealRate)
	}
}

func TestBuildSummary_Member(t *testing.T) {
	report, _, memberID := marchReport()

	s := buildSummary(report, memberID, false)
	if s.Manager {
		t.Error("expected a member summary")
	}
	if s.Meals != 50 {
		t.Errorf("meals: got %d, want the member's own 50", s.Meals)
	}
	if s.Cost != "2500.00" || s.Deposit != "1500.00" || s.Balance != "-1000.00" {
		t.Errorf("row: got cost %q deposit %q balance %q", s.Cost, s.Deposit, s.Balance)
	}
	if !s.InDebt {
		t.Error("a negative balance should flag debt")
	}
}

func TestBuildSummary_MemberWithoutRecords(t *testing.T) {
	report, _, _ := marchReport()

	s := buildSummary(report, primitive.NewObjectID(), false)
	if s.Meals != 0 {
		t.Errorf("meals: got %d, want 0", s.Meals)
	}
	if s.Cost != "0.00" || s.Deposit != "0.00" || s.Balance != "0.00" {
		t.Errorf("zeros: got cost %q deposit %q balance %q", s.Cost, s.Deposit, s.Balance)
	}
	if s.InDebt {
		t.Error("a zero balance is not debt")
	}
}

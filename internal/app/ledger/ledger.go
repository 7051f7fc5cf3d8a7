// Package ledger computes a mess's books for a period: meal totals,
// expense and deposit sums, the meal rate, and per-member balances.
//
// The rate is always recomputed from the period's records; nothing is
// locked in historically. All arithmetic is exact decimal, and nothing
// rounds until display.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/store/messes"
	"github.com/PallabGomasta/messhub/internal/app/store/queries/ledgerqueries"
	"github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/PallabGomasta/messhub/internal/app/system/txn"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrInvalidRange is returned when the period end precedes its start.
	ErrInvalidRange = errors.New("ledger: period end before start")
	// ErrMessNotFound is returned when the mess does not exist.
	ErrMessNotFound = errors.New("ledger: mess not found")
)

// MemberRow is one member's line in the report.
type MemberRow struct {
	UserID   primitive.ObjectID
	Name     string
	Role     string
	Meals    int64
	Cost     decimal.Decimal
	Deposit  decimal.Decimal
	Balance  decimal.Decimal
	JoinedAt time.Time
}

// Report is a mess's books for one period.
type Report struct {
	Mess            models.Mess
	From, To        time.Time
	GrandTotalMeals int64
	TotalExpense    decimal.Decimal
	TotalDeposit    decimal.Decimal
	MealRate        decimal.Decimal
	Members         []MemberRow
}

// Inputs are the fetched record sets BuildReport combines. Keeping the
// combination step pure keeps the financial arithmetic testable
// without a database.
type Inputs struct {
	Mess         models.Mess
	From, To     time.Time
	Memberships  []models.Membership // roster ordered by join time
	Users        map[primitive.ObjectID]models.User
	MealTotals   map[primitive.ObjectID]int64
	TotalExpense decimal.Decimal
	Deposits     map[primitive.ObjectID]decimal.Decimal
}

// BuildReport combines the fetched record sets into a Report.
//
// mealRate = totalExpense / grandTotalMeals when any meals exist, else
// zero. Per member: cost = meals × rate, balance = deposit − cost.
// Members with no in-range records appear with zeros. Negative amounts
// (corrections) flow through unchanged.
func BuildReport(in Inputs) Report {
	var grandTotal int64
	for _, m := range in.Memberships {
		grandTotal += in.MealTotals[m.UserID]
	}

	rate := decimal.Zero
	if grandTotal > 0 {
		rate = in.TotalExpense.Div(decimal.NewFromInt(grandTotal))
	}

	totalDeposit := decimal.Zero
	members := make([]MemberRow, 0, len(in.Memberships))
	for _, m := range in.Memberships {
		meals := in.MealTotals[m.UserID]
		deposit := in.Deposits[m.UserID]
		cost := rate.Mul(decimal.NewFromInt(meals))

		name := ""
		if u, ok := in.Users[m.UserID]; ok {
			name = u.Username
		}

		totalDeposit = totalDeposit.Add(deposit)
		members = append(members, MemberRow{
			UserID:   m.UserID,
			Name:     name,
			Role:     m.Role,
			Meals:    meals,
			Cost:     cost,
			Deposit:  deposit,
			Balance:  deposit.Sub(cost),
			JoinedAt: m.JoinedAt,
		})
	}

	return Report{
		Mess:            in.Mess,
		From:            in.From,
		To:              in.To,
		GrandTotalMeals: grandTotal,
		TotalExpense:    in.TotalExpense,
		TotalDeposit:    totalDeposit,
		MealRate:        rate,
		Members:         members,
	}
}

// Aggregator fetches a period's records and builds the Report.
type Aggregator struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Aggregator {
	return &Aggregator{DB: db, Log: log}
}

// Compute builds the report for messID over [from, to). The reads run
// inside one transaction where the deployment supports them, so the
// report is a consistent snapshot; on standalone servers they fall
// back to sequential reads.
func (a *Aggregator) Compute(ctx context.Context, messID primitive.ObjectID, from, to time.Time) (*Report, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	mess, err := messstore.New(a.DB).GetByID(ctx, messID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrMessNotFound
	}
	if err != nil {
		return nil, err
	}

	in := Inputs{Mess: mess, From: from, To: to}

	err = txn.Run(ctx, a.DB, a.Log, func(ctx context.Context) error {
		var err error
		if in.Memberships, err = membershipstore.New(a.DB).ListByMess(ctx, messID); err != nil {
			return err
		}
		ids := make([]primitive.ObjectID, 0, len(in.Memberships))
		for _, m := range in.Memberships {
			ids = append(ids, m.UserID)
		}
		if in.Users, err = userstore.New(a.DB).GetMany(ctx, ids); err != nil {
			return err
		}
		if in.MealTotals, err = ledgerqueries.MealTotalsPerUser(ctx, a.DB, messID, from, to); err != nil {
			return err
		}
		if in.TotalExpense, err = ledgerqueries.ExpenseTotal(ctx, a.DB, messID, from, to); err != nil {
			return err
		}
		if in.Deposits, err = ledgerqueries.DepositTotalsPerUser(ctx, a.DB, messID, from, to); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := BuildReport(in)
	return &report, nil
}

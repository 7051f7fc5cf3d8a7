// Package notify writes notification records as side effects of
// ledger activity. Failures are logged and never fail the write that
// triggered them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/store/notifications"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Notifier struct {
	notifications *notificationstore.Store
	memberships   *membershipstore.Store
	log           *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Notifier {
	return &Notifier{
		notifications: notificationstore.New(db),
		memberships:   membershipstore.New(db),
		log:           log,
	}
}

// MealRecorded notifies the member whose meals were recorded.
func (n *Notifier) MealRecorded(ctx context.Context, mess models.Mess, userID primitive.ObjectID, date time.Time, total int) {
	msg := fmt.Sprintf("Your meals for %s in %s were recorded (%d meals).",
		date.Format("Jan 2, 2006"), mess.Name, total)
	if err := n.notifications.Create(ctx, userID, &mess.ID, "Meals recorded", msg, models.NotifyInfo); err != nil {
		n.log.Warn("meal notification failed", zap.String("mess_id", mess.ID.Hex()), zap.Error(err))
	}
}

// ExpenseAdded notifies every current member of the mess.
func (n *Notifier) ExpenseAdded(ctx context.Context, mess models.Mess, amount decimal.Decimal, description string) {
	ids, err := n.memberships.MemberUserIDs(ctx, mess.ID)
	if err != nil {
		n.log.Warn("expense notification roster lookup failed", zap.String("mess_id", mess.ID.Hex()), zap.Error(err))
		return
	}
	msg := fmt.Sprintf("New expense in %s: %s (%s).", mess.Name, amount.StringFixed(2), description)
	if err := n.notifications.CreateMany(ctx, ids, &mess.ID, "Expense added", msg, models.NotifyWarning); err != nil {
		n.log.Warn("expense notification failed", zap.String("mess_id", mess.ID.Hex()), zap.Error(err))
	}
}

// DepositRecorded notifies the member whose deposit was recorded.
func (n *Notifier) DepositRecorded(ctx context.Context, mess models.Mess, userID primitive.ObjectID, amount decimal.Decimal) {
	msg := fmt.Sprintf("Your deposit of %s to %s was recorded.", amount.StringFixed(2), mess.Name)
	if err := n.notifications.Create(ctx, userID, &mess.ID, "Deposit recorded", msg, models.NotifySuccess); err != nil {
		n.log.Warn("deposit notification failed", zap.String("mess_id", mess.ID.Hex()), zap.Error(err))
	}
}

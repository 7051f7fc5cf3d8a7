// internal/app/features/messes/manage.go
package messes

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messes/{id}/members/remove                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRemoveMember removes a member and purges their meal and
// deposit records for this mess. Both run in one transaction so a
// removed member never leaves orphaned records behind in the books.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
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
	back := "/messes/" + messID.Hex()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad target user id", err, "Invalid member.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		return h.Memberships.RemoveWithPurge(ctx, messID, userID, targetID)
	})
	switch {
	case err == nil:
		h.Log.Info("member removed",
			zap.String("mess_id", messID.Hex()),
			zap.String("removed_user_id", targetID.Hex()),
			zap.String("by", userID.Hex()))
	case errors.Is(err, membershipstore.ErrSelfRemoval):
		uierrors.RenderForbidden(w, r, "You cannot remove yourself. Transfer the manager role first.", back)
		return
	case errors.Is(err, membershipstore.ErrNotManager):
		uierrors.RenderForbidden(w, r, "Only the manager can remove members.", back)
		return
	case errors.Is(err, membershipstore.ErrNotMember):
		uierrors.RenderForbidden(w, r, "That user is not a member of this mess.", back)
		return
	default:
		h.ErrLog.LogServerError(w, r, "remove member failed", err, "Unable to remove the member.", back)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messes/{id}/transfer                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleTransferManager hands the manager role to another member. The
// two role updates run in one transaction; the mess always has exactly
// one manager.
func (h *Handler) HandleTransferManager(w http.ResponseWriter, r *http.Request) {
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
	back := "/messes/" + messID.Hex()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	targetMembershipID, err := primitive.ObjectIDFromHex(r.FormValue("membership_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad target membership id", err, "Invalid member.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		return h.Memberships.TransferManager(ctx, messID, userID, targetMembershipID)
	})
	switch {
	case err == nil:
		h.Log.Info("manager role transferred",
			zap.String("mess_id", messID.Hex()),
			zap.String("from", userID.Hex()),
			zap.String("to_membership", targetMembershipID.Hex()))
	case errors.Is(err, membershipstore.ErrNotManager):
		uierrors.RenderForbidden(w, r, "Only the manager can transfer the role.", back)
		return
	case errors.Is(err, membershipstore.ErrSameUser):
		uierrors.RenderForbidden(w, r, "You already hold the manager role.", back)
		return
	case errors.Is(err, membershipstore.ErrNotMember):
		uierrors.RenderForbidden(w, r, "That user is not a member of this mess.", back)
		return
	default:
		h.ErrLog.LogServerError(w, r, "transfer manager failed", err, "Unable to transfer the role.", back)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// internal/app/features/messes/join.go
package messes

import (
	"context"
	"errors"
	"net/http"

	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/normalize"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type joinFormData struct {
	viewdata.BaseVM
	Error string
	Code  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messes/join                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeJoinMess(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "mess_join", joinFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Join a mess", "/dashboard"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messes/join                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleJoinMess(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/messes/join")
		return
	}

	code := normalize.MessCode(r.FormValue("code"))
	if code == "" {
		h.renderJoinWithError(w, r, "Please enter a join code.", code)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	mess, err := h.Messes.GetByCode(ctx, code)
	switch err {
	case nil:
		// found, continue
	case mongo.ErrNoDocuments:
		h.renderJoinWithError(w, r, "No mess found for that code. Check it with your manager.", code)
		return
	default:
		h.ErrLog.LogServerError(w, r, "find mess by code failed", err, "A database error occurred.", "/messes/join")
		return
	}

	if err := h.Memberships.Join(ctx, mess.ID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrAlreadyMember) {
			h.renderJoinWithError(w, r, "You are already a member of "+mess.Name+".", code)
			return
		}
		h.ErrLog.LogServerError(w, r, "join mess failed", err, "Unable to join the mess.", "/messes/join")
		return
	}

	h.Log.Info("user joined mess",
		zap.String("mess_id", mess.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	http.Redirect(w, r, "/messes/"+mess.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) renderJoinWithError(w http.ResponseWriter, r *http.Request, msg, code string) {
	templates.Render(w, r, "mess_join", joinFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Join a mess", "/dashboard"),
		Error:  msg,
		Code:   code,
	})
}

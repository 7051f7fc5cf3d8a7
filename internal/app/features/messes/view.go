// internal/app/features/messes/view.go
package messes

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memberRow is one roster line on the mess page.
type memberRow struct {
	MembershipID string
	UserID       string
	Name         string
	Role         string
	IsManager    bool
	JoinedAt     time.Time
}

type messViewData struct {
	viewdata.BaseVM
	MessID    string
	Name      string
	Address   string
	Code      string
	IsManager bool
	Members   []memberRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messes/{id}                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeMessView shows the roster. Members see names and roles;
// managers also get the join code and the remove/transfer controls.
func (h *Handler) ServeMessView(w http.ResponseWriter, r *http.Request) {
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
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load mess failed", err, "A database error occurred.", "/dashboard")
		return
	}

	memberships, err := h.Memberships.ListByMess(ctx, messID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/dashboard")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load member users failed", err, "A database error occurred.", "/dashboard")
		return
	}

	rows := make([]memberRow, 0, len(memberships))
	for _, m := range memberships {
		name := "(deleted account)"
		if u, found := users[m.UserID]; found {
			name = u.Username
		}
		rows = append(rows, memberRow{
			MembershipID: m.ID.Hex(),
			UserID:       m.UserID.Hex(),
			Name:         name,
			Role:         m.Role,
			IsManager:    m.Role == models.RoleManager,
			JoinedAt:     m.JoinedAt,
		})
	}

	data := messViewData{
		BaseVM:    viewdata.NewBaseVM(r, h.DB, mess.Name, "/dashboard"),
		MessID:    mess.ID.Hex(),
		Name:      mess.Name,
		Address:   mess.Address,
		IsManager: own.Role == models.RoleManager,
		Members:   rows,
	}
	if data.IsManager {
		data.Code = mess.Code
	}

	templates.Render(w, r, "mess_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messes/{id}/edit                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type editFormData struct {
	viewdata.BaseVM
	Error   string
	MessID  string
	Name    string
	Address string
}

func (h *Handler) ServeEditMess(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can edit the mess.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

	mess, err := h.Messes.GetByID(ctx, messID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load mess failed", err, "A database error occurred.", "/dashboard")
		return
	}

	templates.Render(w, r, "mess_edit", editFormData{
		BaseVM:  viewdata.NewBaseVM(r, h.DB, "Edit mess", "/messes/"+messID.Hex()),
		MessID:  mess.ID.Hex(),
		Name:    mess.Name,
		Address: mess.Address,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messes/{id}/edit                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditMess(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/messes/"+messID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Memberships.RequireManager(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotManager) {
			uierrors.RenderForbidden(w, r, "Only the manager can edit the mess.", "/messes/"+messID.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "manager check failed", err, "A database error occurred.", "/dashboard")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	address := strings.TrimSpace(r.FormValue("address"))
	if name == "" {
		templates.Render(w, r, "mess_edit", editFormData{
			BaseVM:  viewdata.NewBaseVM(r, h.DB, "Edit mess", "/messes/"+messID.Hex()),
			Error:   "The mess needs a name.",
			MessID:  messID.Hex(),
			Address: address,
		})
		return
	}

	if err := h.Messes.Update(ctx, messID, name, address); err != nil {
		h.ErrLog.LogServerError(w, r, "update mess failed", err, "Unable to save changes.", "/messes/"+messID.Hex())
		return
	}

	http.Redirect(w, r, "/messes/"+messID.Hex(), http.StatusSeeOther)
}

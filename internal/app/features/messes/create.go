// internal/app/features/messes/create.go
package messes

import (
	"context"
	"net/http"
	"strings"

	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/txn"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type newMessFormData struct {
	viewdata.BaseVM
	Error   string
	Name    string
	Address string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /messes/new                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNewMess(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "mess_new", newMessFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Create a mess", "/dashboard"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /messes                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreateMess inserts the mess and the creator's manager
// membership in one transaction. The creator is always the first
// manager.
func (h *Handler) HandleCreateMess(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/messes/new")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	address := strings.TrimSpace(r.FormValue("address"))
	if name == "" {
		templates.Render(w, r, "mess_new", newMessFormData{
			BaseVM:  viewdata.NewBaseVM(r, h.DB, "Create a mess", "/dashboard"),
			Error:   "Please give your mess a name.",
			Address: address,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mess, err := h.Messes.CreateWithManager(ctx, name, address, userID,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.Run(ctx, h.DB, h.Log, fn)
		})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create mess failed", err, "Unable to create the mess.", "/messes/new")
		return
	}

	h.Log.Info("mess created",
		zap.String("mess_id", mess.ID.Hex()),
		zap.String("manager_id", userID.Hex()))

	http.Redirect(w, r, "/messes/"+mess.ID.Hex(), http.StatusSeeOther)
}

// internal/app/features/messes/routes.go
package messes

import (
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /messes requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE
		pr.Get("/new", h.ServeNewMess)
		pr.Post("/", h.HandleCreateMess)

		// JOIN BY CODE
		pr.Get("/join", h.ServeJoinMess)
		pr.Post("/join", h.HandleJoinMess)

		// VIEW (roster + manager tools)
		pr.Get("/{id}", h.ServeMessView)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEditMess)
		pr.Post("/{id}/edit", h.HandleEditMess)

		// MEMBER MANAGEMENT
		pr.Post("/{id}/members/remove", h.HandleRemoveMember)
		pr.Post("/{id}/transfer", h.HandleTransferManager)
	})

	return r
}

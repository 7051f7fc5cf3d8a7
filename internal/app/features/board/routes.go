// internal/app/features/board/routes.go
package board

import (
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/{id}", h.ServeBoard)
		pr.Post("/{id}", h.HandlePost)
	})

	return r
}

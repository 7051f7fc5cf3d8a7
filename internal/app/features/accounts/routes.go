// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// MEALS (any member; managers can record for others)
		pr.Get("/{id}/meals", h.ServeMeals)
		pr.Post("/{id}/meals", h.HandleMealPost)

		// EXPENSES (manager only)
		pr.Get("/{id}/expenses", h.ServeExpenses)
		pr.Post("/{id}/expenses", h.HandleExpensePost)

		// DEPOSITS (manager records; members see their own)
		pr.Get("/{id}/deposits", h.ServeDeposits)
		pr.Post("/{id}/deposits", h.HandleDepositPost)
	})

	return r
}

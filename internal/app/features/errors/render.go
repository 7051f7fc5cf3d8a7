// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, nil, "Sign in required", backURL),
		Message: "Please sign in to continue.",
	}

	templates.Render(w, r, "error_forbidden", data)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, nil, "Access denied", backURL),
		Message: msg,
	}

	templates.Render(w, r, "error_forbidden", data)
}

// RenderNotFound shows a friendly "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "The page you were looking for does not exist."
	}
	if backURL == "" {
		backURL = "/"
	}

	w.WriteHeader(http.StatusNotFound)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, nil, "Not found", backURL),
		Message: msg,
	}

	templates.Render(w, r, "error_message", data)
}

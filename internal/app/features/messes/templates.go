// internal/app/features/messes/templates.go
package messes

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "messes",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

// internal/app/features/board/templates.go
package board

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "board",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

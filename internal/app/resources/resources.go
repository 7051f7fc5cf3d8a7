// Package resources holds assets shared by every feature: the page
// chrome (page_top/page_bottom) that feature templates wrap themselves
// in.
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var sharedFS embed.FS

var once sync.Once

// LoadSharedTemplates registers the layout set with the template
// engine. Safe to call more than once; only the first call registers.
func LoadSharedTemplates() {
	once.Do(func() {
		templates.Register(templates.Set{
			Name:     "layout",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

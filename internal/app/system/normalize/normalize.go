// Package normalize cleans user-supplied identity fields before
// storage or lookup so comparisons behave consistently.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Username trims whitespace and preserves case for display.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// UsernameKey folds a username to its case- and accent-insensitive
// lookup form. Stored alongside the display form and backed by the
// unique index on users.username_ci.
func UsernameKey(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a membership role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MessCode trims a join code as entered by the user.
func MessCode(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-form query value, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize bounds ordinary form submissions (login, signup,
	// mess settings, accounting entries).
	MaxFormSize = 64 << 10 // 64 KB

	// MaxBoardPostSize bounds board post submissions, which carry the
	// largest free-text field in the app.
	MaxBoardPostSize = 256 << 10 // 256 KB
)

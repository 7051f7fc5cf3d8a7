// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders a user-facing error
// page in one call. The internal message and error go to the log; the
// user sees only userMsg and a back link.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a client error and renders a 400 error page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.log.Warn(internalMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.render(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogServerError logs a server error and renders a 500 error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg, backURL string) {
	e.log.Error(internalMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.render(w, r, http.StatusInternalServerError, userMsg, backURL)
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, userMsg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	w.WriteHeader(status)

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, nil, "Something went wrong", backURL),
		Message: userMsg,
	}

	templates.Render(w, r, "error_message", data)
}

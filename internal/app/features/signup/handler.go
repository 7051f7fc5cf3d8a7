// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	userstore "github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/PallabGomasta/messhub/internal/app/system/authutil"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/normalize"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Users:      userstore.New(db),
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Username      string
	Email         string
	PasswordRules string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign up", "/"),
		PasswordRules: authutil.PasswordRules(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	username := normalize.Username(r.FormValue("username"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		h.renderFormWithError(w, r, "Username must be between 3 and 32 characters.", username, email)
		return
	}
	if strings.ContainsAny(username, " \t") {
		h.renderFormWithError(w, r, "Username cannot contain spaces.", username, email)
		return
	}
	if password != confirm {
		h.renderFormWithError(w, r, "Passwords do not match.", username, email)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderFormWithError(w, r, err.Error(), username, email)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "A server error occurred.", "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			h.renderFormWithError(w, r, "That username is already taken.", username, email)
			return
		}
		h.ErrLog.LogServerError(w, r, "create user failed", err, "A server error occurred.", "/signup")
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		// Account exists; send them to the login page rather than a dead end.
		h.Log.Error("sign-in after signup failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign up", "/"),
		Error:         msg,
		Username:      username,
		Email:         email,
		PasswordRules: authutil.PasswordRules(),
	})
}

// internal/app/features/board/handler.go
package board

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	membershipstore "github.com/PallabGomasta/messhub/internal/app/store/memberships"
	messagestore "github.com/PallabGomasta/messhub/internal/app/store/messages"
	messstore "github.com/PallabGomasta/messhub/internal/app/store/messes"
	userstore "github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/htmlsanitize"
	"github.com/PallabGomasta/messhub/internal/app/system/limits"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxPostLength = 2000

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Messes      *messstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Messages    *messagestore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Messes:      messstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		Messages:    messagestore.New(db),
	}
}

type postVM struct {
	Author    string
	Content   template.HTML
	CreatedAt time.Time
}

type boardPageData struct {
	viewdata.BaseVM
	Error    string
	MessID   string
	MessName string
	Posts    []postVM
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /board/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeBoard shows the mess board, newest posts first.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	h.renderBoard(w, r, "")
}

func (h *Handler) renderBoard(w http.ResponseWriter, r *http.Request, formError string) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	messID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Memberships.RequireMember(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotMember) {
			uierrors.RenderForbidden(w, r, "You are not a member of this mess.", "/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "membership lookup failed", err, "A database error occurred.", "/dashboard")
		return
	}

	mess, err := h.Messes.GetByID(ctx, messID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load mess failed", err, "A database error occurred.", "/dashboard")
		return
	}

	posts, err := h.Messages.ListByMess(ctx, messID, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list board posts failed", err, "A database error occurred.", "/dashboard")
		return
	}

	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
	}
	users, err := h.Users.GetMany(ctx, authorIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load post authors failed", err, "A database error occurred.", "/dashboard")
		return
	}

	vms := make([]postVM, 0, len(posts))
	for _, p := range posts {
		author := "(deleted account)"
		if u, found := users[p.UserID]; found {
			author = u.Username
		}
		vms = append(vms, postVM{
			Author:    author,
			Content:   htmlsanitize.PrepareForDisplay(p.Content),
			CreatedAt: p.CreatedAt,
		})
	}

	templates.Render(w, r, "board", boardPageData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Board · "+mess.Name, "/messes/"+messID.Hex()),
		Error:    formError,
		MessID:   messID.Hex(),
		MessName: mess.Name,
		Posts:    vms,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /board/{id}                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandlePost adds a board message. Content is sanitized before storage
// so stored markup is always safe.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	messID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That mess does not exist.", "/dashboard")
		return
	}
	back := "/board/" + messID.Hex()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBoardPostSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Memberships.RequireMember(ctx, messID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotMember) {
			uierrors.RenderForbidden(w, r, "You are not a member of this mess.", "/dashboard")
			return
		}
		h.ErrLog.LogServerError(w, r, "membership lookup failed", err, "A database error occurred.", "/dashboard")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if !htmlsanitize.IsPlainText(content) {
		content = htmlsanitize.Sanitize(content)
	}
	if content == "" {
		h.renderBoard(w, r, "The post is empty.")
		return
	}
	if len(content) > maxPostLength {
		h.renderBoard(w, r, "The post is too long.")
		return
	}

	post, err := h.Messages.Create(ctx, messID, userID, content)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create board post failed", err, "Unable to save the post.", back)
		return
	}

	h.Log.Info("board post created",
		zap.String("mess_id", messID.Hex()),
		zap.String("message_id", post.ID.Hex()))

	http.Redirect(w, r, back, http.StatusSeeOther)
}

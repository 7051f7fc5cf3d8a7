// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	notificationstore "github.com/PallabGomasta/messhub/internal/app/store/notifications"
	"github.com/PallabGomasta/messhub/internal/app/system/authz"
	"github.com/PallabGomasta/messhub/internal/app/system/timeouts"
	"github.com/PallabGomasta/messhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
	Notifications *notificationstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		ErrLog:        errLog,
		Notifications: notificationstore.New(db),
	}
}

type notificationVM struct {
	ID        string
	Title     string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}

type pageData struct {
	viewdata.BaseVM
	Notifications []notificationVM
	Unread        int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notifications                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	notifications, err := h.Notifications.ListByUser(ctx, userID, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "A database error occurred.", "/dashboard")
		return
	}
	unread, err := h.Notifications.CountUnread(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count unread failed", err, "A database error occurred.", "/dashboard")
		return
	}

	vms := make([]notificationVM, 0, len(notifications))
	for _, n := range notifications {
		vms = append(vms, notificationVM{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	templates.Render(w, r, "notifications", pageData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Notifications", "/dashboard"),
		Notifications: vms,
		Unread:        unread,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notifications/{id}/read                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleMarkRead marks one notification read. The store's user filter
// means users can only touch their own.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad notification id", err, "Invalid notification.", "/notifications")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err, "A database error occurred.", "/notifications")
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notifications/read-all                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark all read failed", err, "A database error occurred.", "/notifications")
		return
	}

	h.Log.Info("notifications marked read",
		zap.String("user_id", userID.Hex()),
		zap.Int64("count", n))

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

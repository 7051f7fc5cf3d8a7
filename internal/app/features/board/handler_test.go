package board_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PallabGomasta/messhub/internal/app/features/board"
	uierrors "github.com/PallabGomasta/messhub/internal/app/features/errors"
	"github.com/PallabGomasta/messhub/internal/domain/models"
	"github.com/PallabGomasta/messhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*board.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	handler := board.NewHandler(db, errLog, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func postBoard(handler *board.Handler, mess models.Mess, user testutil.TestUser, content string) *testutil.ResponseRecorder {
	form := url.Values{"content": {content}}
	req := testutil.NewFormRequest("/board/"+mess.ID.Hex(), form, user)
	req = testutil.WithChiURLParam(req, "id", mess.ID.Hex())
	rec := testutil.NewRecorder()

	// Validation failures re-render the board, which panics without
	// initialized templates
	func() {
		defer func() { recover() }()
		handler.HandlePost(rec.ResponseRecorder, req)
	}()
	return rec
}

func TestHandlePost(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)

	rec := postBoard(handler, mess, testutil.UserFor(manager.ID, "manager"), "Bazar duty rotates on Sunday.")

	rec.AssertRedirect(t, "/board/"+mess.ID.Hex())

	var msg models.Message
	if err := fixtures.DB().Collection("messages").FindOne(ctx, bson.M{"mess_id": mess.ID}).Decode(&msg); err != nil {
		t.Fatalf("find message: %v", err)
	}
	if msg.Content != "Bazar duty rotates on Sunday." {
		t.Errorf("content: got %q", msg.Content)
	}
}

func TestHandlePost_SanitizesMarkup(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)

	rec := postBoard(handler, mess, testutil.UserFor(manager.ID, "manager"),
		`<script>alert("x")</script><b>meeting at 8</b>`)

	rec.AssertRedirect(t, "/board/"+mess.ID.Hex())

	var msg models.Message
	if err := fixtures.DB().Collection("messages").FindOne(ctx, bson.M{"mess_id": mess.ID}).Decode(&msg); err != nil {
		t.Fatalf("find message: %v", err)
	}
	if strings.Contains(msg.Content, "<script") {
		t.Errorf("script tag survived sanitization: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "meeting at 8") {
		t.Errorf("benign content lost: %q", msg.Content)
	}
}

func TestHandlePost_EmptyAfterSanitize(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)

	rec := postBoard(handler, mess, testutil.UserFor(manager.ID, "manager"), `<script>alert("x")</script>`)

	if rec.Code == http.StatusSeeOther {
		t.Error("a post that sanitizes to nothing should not redirect")
	}
	n, err := fixtures.DB().Collection("messages").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 0 {
		t.Errorf("no message should be stored, got %d rows", n)
	}
}

func TestHandlePost_NonMemberForbidden(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "manager")
	outsider := fixtures.CreateUser(ctx, "outsider")
	mess := fixtures.CreateMess(ctx, "Green House", "654321", manager.ID)

	rec := postBoard(handler, mess, testutil.UserFor(outsider.ID, "outsider"), "hello")

	if rec.Code == http.StatusSeeOther {
		t.Error("a non-member post should not redirect")
	}
	n, err := fixtures.DB().Collection("messages").CountDocuments(ctx, bson.M{"mess_id": mess.ID})
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 0 {
		t.Errorf("no message should be stored, got %d rows", n)
	}
}

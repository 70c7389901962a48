package collab

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/repository/sqlite"
	"inkwell/internal/service/history"
	"inkwell/internal/service/workspace"
)

// stubProvider returns a canned result or error and records the last request.
type stubProvider struct {
	result  *services.AssistResult
	err     error
	lastReq *services.AssistRequest
	entered chan struct{} // non-nil: signaled when a call arrives
	release chan struct{} // non-nil: call blocks until closed
}

func (p *stubProvider) Name() string                  { return "stub" }
func (p *stubProvider) SupportsModel(model string) bool { return true }

func (p *stubProvider) RequestAssistance(ctx context.Context, req *services.AssistRequest) (*services.AssistResult, error) {
	p.lastReq = req
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.result, p.err
}

type testEnv struct {
	coord    services.Collaborator
	gateway  services.ContentGateway
	store    services.HistoryStore
	repo     repositories.DocumentRepository
	docRepo  func(ctx context.Context, id string) *models.Document
	docID    string
	provider *stubProvider
}

func newTestEnv(t *testing.T, provider *stubProvider) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repoCfg := &sqlite.RepositoryConfig{DB: db, Logger: logger}
	docRepo := sqlite.NewDocumentRepository(repoCfg)
	historyRepo := sqlite.NewHistoryRepository(repoCfg)
	transcriptRepo := sqlite.NewTranscriptRepository(repoCfg)

	store := history.NewStore(historyRepo, logger)
	gateway := workspace.NewContentGateway(docRepo, store, logger)
	transcript := NewTranscript(ctx, transcriptRepo, logger)
	coord := NewCoordinator(transcript, provider, gateway, docRepo, "stub-model", logger)

	doc := &models.Document{
		ID:        "doc-1",
		Name:      "notes.txt",
		Content:   "original content",
		Kind:      models.DocumentKindText,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("Create document failed: %v", err)
	}
	store.Initialize(ctx, doc.ID, doc.Content)

	return &testEnv{
		coord:   coord,
		gateway: gateway,
		store:   store,
		repo:    docRepo,
		docRepo: func(ctx context.Context, id string) *models.Document {
			got, err := docRepo.GetByID(ctx, id, false)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			return got
		},
		docID:    doc.ID,
		provider: provider,
	}
}

func (e *testEnv) activate(ctx context.Context) {
	e.coord.OnActiveDocumentChanged(ctx, nil, &e.docID)
}

func TestSendMessageChatReply(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "hello there"},
	})
	env.activate(ctx)

	reply, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Text != "hello there" {
		t.Errorf("reply text = %q, want %q", reply.Text, "hello there")
	}
	if reply.Sender != models.SenderAssistant {
		t.Errorf("reply sender = %q, want assistant", reply.Sender)
	}

	msgs := env.coord.Transcript(ctx)
	if len(msgs) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[0].Text != "hi" {
		t.Errorf("first message = %+v, want the user message", msgs[0])
	}
	if env.docRepo(ctx, env.docID).Content != "original content" {
		t.Error("chat reply must not touch the document")
	}
	if env.coord.Busy() {
		t.Error("Busy() = true after the turn resolved")
	}
}

func TestSendMessageDocumentUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: "rewritten content",
			ReplyText:  "I tightened the intro.",
		},
	})
	env.activate(ctx)

	reply, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "rewrite it"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Text != "I tightened the intro." {
		t.Errorf("reply text = %q", reply.Text)
	}

	if got := env.docRepo(ctx, env.docID).Content; got != "rewritten content" {
		t.Errorf("document content = %q, want %q", got, "rewritten content")
	}
	// The rewrite went through the gateway, so it is a normal undo step
	if !env.store.CanUndo(ctx, env.docID) {
		t.Error("CanUndo() = false after AI rewrite, want true")
	}
	if env.provider.lastReq.DocumentContent == nil || *env.provider.lastReq.DocumentContent != "original content" {
		t.Error("provider did not receive the pre-edit document content")
	}
}

func TestUndoAIChangeRestoresOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: "rewritten content",
			ReplyText:  "done",
		},
	})
	env.activate(ctx)

	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "rewrite it"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	applied, err := env.coord.UndoAIChange(ctx)
	if err != nil {
		t.Fatalf("UndoAIChange failed: %v", err)
	}
	if !applied {
		t.Fatal("UndoAIChange() = false, want true")
	}
	if got := env.docRepo(ctx, env.docID).Content; got != "original content" {
		t.Errorf("document content = %q, want %q", got, "original content")
	}

	// Without an intervening AI edit the second call is a no-op
	applied, err = env.coord.UndoAIChange(ctx)
	if err != nil {
		t.Fatalf("UndoAIChange failed: %v", err)
	}
	if applied {
		t.Error("second UndoAIChange() = true, want false")
	}
}

func TestDocumentSwitchClearsAIUndo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: "rewritten content",
			ReplyText:  "done",
		},
	})
	env.activate(ctx)

	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "rewrite it"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Deactivating clears the pending snapshot even though it was never
	// consumed
	env.coord.OnActiveDocumentChanged(ctx, &env.docID, nil)
	env.activate(ctx)

	applied, err := env.coord.UndoAIChange(ctx)
	if err != nil {
		t.Fatalf("UndoAIChange failed: %v", err)
	}
	if applied {
		t.Error("UndoAIChange() = true after document switch, want false")
	}
}

func TestFailedDocumentSwitchKeepsCoordinatorTarget(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: "rewritten content",
			ReplyText:  "done",
		},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := workspace.NewSessionController(env.repo, env.store, env.coord, workspace.NewPanelState(), logger)

	id := env.docID
	if err := session.SetActiveDocument(ctx, &id); err != nil {
		t.Fatalf("SetActiveDocument failed: %v", err)
	}

	ghost := "no-such-doc"
	if err := session.SetActiveDocument(ctx, &ghost); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if got := session.ActiveDocumentID(); got == nil || *got != env.docID {
		t.Fatalf("ActiveDocumentID() = %v, want %s kept", got, env.docID)
	}

	// The coordinator must still target the document the session reports
	// as active, so a rewrite turn lands on it
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "rewrite it"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if got := env.docRepo(ctx, env.docID).Content; got != "rewritten content" {
		t.Errorf("active document content = %q, want the rewrite applied", got)
	}
}

func TestDocumentUpdateWithoutActiveDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: "rewritten content",
			ReplyText:  "done",
		},
	})
	// No active document; attach an image so validation lets it through

	reply, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{
		Text:       "rewrite it",
		Attachment: &models.Attachment{Data: []byte{1}, MIMEType: "image/png"},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "no document was open") {
		t.Errorf("reply = %q, want the no-active-document note appended", reply.Text)
	}
	if got := env.docRepo(ctx, env.docID).Content; got != "original content" {
		t.Error("document was modified without being active")
	}
}

func TestProviderFailureYieldsErrorMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{err: errors.New("connection refused")})
	env.activate(ctx)

	reply, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Text != errorReplyText {
		t.Errorf("reply = %q, want the fixed error text", reply.Text)
	}
	if env.coord.Busy() {
		t.Error("Busy() = true after a failed turn, want false")
	}
}

func TestMalformedResultTreatedAsFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: "interpretive_dance", ReplyText: "??"},
	})
	env.activate(ctx)

	reply, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Text != errorReplyText {
		t.Errorf("reply = %q, want the fixed error text", reply.Text)
	}
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "x"},
	})

	// Empty message with no attachment
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty message error = %v, want ErrValidation", err)
	}

	// Text-only message with no active document
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "hi"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("no-active-document error = %v, want ErrValidation", err)
	}

	// Nothing was appended by rejected sends
	if got := len(env.coord.Transcript(ctx)); got != 0 {
		t.Errorf("transcript length = %d after rejected sends, want 0", got)
	}
}

func TestEditAndRegenerate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "regenerated"},
	})
	env.activate(ctx)

	// Build [U1, A1, U2, A2]
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "first question"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "second question"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	msgs := env.coord.Transcript(ctx)
	if len(msgs) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(msgs))
	}
	u1, a1 := msgs[0], msgs[1]

	env.provider.result = &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "fresh answer"}
	reply, err := env.coord.EditAndRegenerate(ctx, u1.ID, "revised question")
	if err != nil {
		t.Fatalf("EditAndRegenerate failed: %v", err)
	}
	if reply.Text != "fresh answer" {
		t.Errorf("reply = %q, want %q", reply.Text, "fresh answer")
	}

	msgs = env.coord.Transcript(ctx)
	if len(msgs) != 4 {
		t.Fatalf("transcript length = %d after regenerate, want 4", len(msgs))
	}

	// Exactly one stale reply was replaced
	for _, msg := range msgs {
		if msg.ID == a1.ID {
			t.Error("stale assistant reply is still in the transcript")
		}
	}

	// Ordering stays timestamp-ascending, and the fresh reply directly
	// follows the edited message (its timestamp was bumped to now)
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("transcript not sorted at index %d", i)
		}
	}
	var editedIdx, replyIdx int = -1, -1
	for i, msg := range msgs {
		if msg.ID == u1.ID {
			editedIdx = i
			if msg.Text != "revised question" {
				t.Errorf("edited message text = %q", msg.Text)
			}
		}
		if msg.ID == reply.ID {
			replyIdx = i
		}
	}
	if editedIdx == -1 || replyIdx != editedIdx+1 {
		t.Errorf("fresh reply at index %d, want immediately after edited message at %d", replyIdx, editedIdx)
	}
}

func TestEditAndRegenerateUnknownMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "x"},
	})
	env.activate(ctx)

	if _, err := env.coord.EditAndRegenerate(ctx, "no-such-id", "text"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if env.coord.Busy() {
		t.Error("Busy() = true after rejected regenerate")
	}
}

func TestBusyGateSharedByBothPaths(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{
		result:  &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "slow answer"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	env := newTestEnv(t, provider)
	env.activate(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "slow one"})
		done <- err
	}()
	<-provider.entered

	// While the first turn is in flight, both paths are rejected
	if _, err := env.coord.SendMessage(ctx, &services.SendMessageRequest{Text: "another"}); !errors.Is(err, domain.ErrBusy) {
		t.Errorf("concurrent SendMessage error = %v, want ErrBusy", err)
	}
	if _, err := env.coord.EditAndRegenerate(ctx, "any-id", "revised"); !errors.Is(err, domain.ErrBusy) {
		t.Errorf("concurrent EditAndRegenerate error = %v, want ErrBusy", err)
	}

	close(provider.release)
	if err := <-done; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	if env.coord.Busy() {
		t.Error("Busy() = true after the in-flight turn resolved")
	}
}

func TestWelcomeMessageReplaced(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "x"},
	})

	if err := env.coord.AddWelcomeMessage(ctx, "notes.txt", true); err != nil {
		t.Fatalf("AddWelcomeMessage failed: %v", err)
	}
	if err := env.coord.AddWelcomeMessage(ctx, "plan.csv", false); err != nil {
		t.Fatalf("AddWelcomeMessage failed: %v", err)
	}

	msgs := env.coord.Transcript(ctx)
	if len(msgs) != 1 {
		t.Fatalf("transcript length = %d, want exactly one welcome message", len(msgs))
	}
	if !strings.HasPrefix(msgs[0].Text, welcomeOpenedPrefix) || !strings.Contains(msgs[0].Text, "plan.csv") {
		t.Errorf("welcome text = %q, want opened-phrasing for plan.csv", msgs[0].Text)
	}
}

func TestDeleteMessageUnknownIsNoOp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &stubProvider{
		result: &services.AssistResult{Kind: services.AssistKindChatReply, ReplyText: "x"},
	})

	if err := env.coord.DeleteMessage(ctx, "ghost"); err != nil {
		t.Errorf("DeleteMessage on unknown id = %v, want nil", err)
	}
}

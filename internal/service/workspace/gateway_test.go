package workspace

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/repository/sqlite"
	"inkwell/internal/service/history"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWorkspaceFixture(t *testing.T) (repositories.DocumentRepository, repositories.FolderRepository, services.HistoryStore) {
	t.Helper()
	logger := testLogger()

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repoCfg := &sqlite.RepositoryConfig{DB: db, Logger: logger}
	return sqlite.NewDocumentRepository(repoCfg),
		sqlite.NewFolderRepository(repoCfg),
		history.NewStore(sqlite.NewHistoryRepository(repoCfg), logger)
}

func createDocument(t *testing.T, docRepo repositories.DocumentRepository, store services.HistoryStore, id, content string) {
	t.Helper()
	ctx := context.Background()
	doc := &models.Document{
		ID:        id,
		Name:      id + ".txt",
		Content:   content,
		Kind:      models.DocumentKindText,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	store.Initialize(ctx, id, content)
}

func TestApplyContentChangePushesHistory(t *testing.T) {
	ctx := context.Background()
	docRepo, _, store := newWorkspaceFixture(t)
	gateway := NewContentGateway(docRepo, store, testLogger())
	createDocument(t, docRepo, store, "doc-1", "v0")

	if err := gateway.ApplyContentChange(ctx, "doc-1", "v1"); err != nil {
		t.Fatalf("ApplyContentChange failed: %v", err)
	}

	doc, err := docRepo.GetByID(ctx, "doc-1", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if doc.Content != "v1" {
		t.Errorf("content = %q, want %q", doc.Content, "v1")
	}
	if !store.CanUndo(ctx, "doc-1") {
		t.Error("CanUndo = false after a content change")
	}
}

func TestUndoRedoDoNotPush(t *testing.T) {
	ctx := context.Background()
	docRepo, _, store := newWorkspaceFixture(t)
	gateway := NewContentGateway(docRepo, store, testLogger())
	createDocument(t, docRepo, store, "doc-1", "v0")

	if err := gateway.ApplyContentChange(ctx, "doc-1", "v1"); err != nil {
		t.Fatalf("ApplyContentChange failed: %v", err)
	}

	doc, err := gateway.Undo(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if doc.Content != "v0" {
		t.Errorf("content after undo = %q, want %q", doc.Content, "v0")
	}
	// Undo must not create forward history beyond the existing redo step
	if !store.CanRedo(ctx, "doc-1") {
		t.Error("CanRedo = false after undo")
	}

	doc, err = gateway.Redo(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if doc.Content != "v1" {
		t.Errorf("content after redo = %q, want %q", doc.Content, "v1")
	}
	if store.CanRedo(ctx, "doc-1") {
		t.Error("CanRedo = true at the top of the stack")
	}
}

func TestUndoWithoutHistoryReturnsDocumentUnchanged(t *testing.T) {
	ctx := context.Background()
	docRepo, _, store := newWorkspaceFixture(t)
	gateway := NewContentGateway(docRepo, store, testLogger())
	createDocument(t, docRepo, store, "doc-1", "v0")

	doc, err := gateway.Undo(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if doc.Content != "v0" {
		t.Errorf("content = %q, want unchanged %q", doc.Content, "v0")
	}
}

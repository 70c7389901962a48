package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/repository/sqlite"
)

func newTestRepo(t *testing.T) repositories.HistoryRepository {
	t.Helper()

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlite.NewHistoryRepository(&sqlite.RepositoryConfig{
		DB:     db,
		Logger: testLogger(),
	})
}

func newTestStore(t *testing.T) services.HistoryStore {
	t.Helper()
	return NewStore(newTestRepo(t), testLogger())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPushIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")
	store.Push(ctx, "doc", "b")

	entry := store.Entry("doc")
	if entry == nil {
		t.Fatal("Entry() = nil, want entry")
	}
	if len(entry.Snapshots) != 2 {
		t.Errorf("len(Snapshots) = %d, want 2", len(entry.Snapshots))
	}
	if entry.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", entry.CurrentIndex)
	}
}

func TestUndoRedoInverse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	contents := []string{"c0", "c1", "c2", "c3", "c4"}
	store.Initialize(ctx, "doc", contents[0])
	for _, c := range contents[1:] {
		store.Push(ctx, "doc", c)
	}

	// Undo all the way down, checking every intermediate snapshot
	for i := len(contents) - 2; i >= 0; i-- {
		got, ok := store.Undo(ctx, "doc")
		if !ok {
			t.Fatalf("Undo() ok = false at step %d", i)
		}
		if got != contents[i] {
			t.Errorf("Undo() = %q, want %q", got, contents[i])
		}
	}
	if _, ok := store.Undo(ctx, "doc"); ok {
		t.Error("Undo() past the bottom should report ok = false")
	}

	// Redo all the way back up
	for i := 1; i < len(contents); i++ {
		got, ok := store.Redo(ctx, "doc")
		if !ok {
			t.Fatalf("Redo() ok = false at step %d", i)
		}
		if got != contents[i] {
			t.Errorf("Redo() = %q, want %q", got, contents[i])
		}
	}
	if _, ok := store.Redo(ctx, "doc"); ok {
		t.Error("Redo() past the top should report ok = false")
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "c0")
	store.Push(ctx, "doc", "c1")
	store.Push(ctx, "doc", "c2")
	if _, ok := store.Undo(ctx, "doc"); !ok {
		t.Fatal("Undo() failed")
	}
	store.Push(ctx, "doc", "c3")

	entry := store.Entry("doc")
	want := []string{"c0", "c1", "c3"}
	if len(entry.Snapshots) != len(want) {
		t.Fatalf("Snapshots = %v, want %v", entry.Snapshots, want)
	}
	for i := range want {
		if entry.Snapshots[i] != want[i] {
			t.Errorf("Snapshots[%d] = %q, want %q", i, entry.Snapshots[i], want[i])
		}
	}
	if entry.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", entry.CurrentIndex)
	}
	if store.CanRedo(ctx, "doc") {
		t.Error("CanRedo() = true after branch truncation, want false")
	}
}

func TestCapEnforcement(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "c0")
	for i := 1; i < 60; i++ {
		store.Push(ctx, "doc", fmt.Sprintf("c%d", i))
	}

	entry := store.Entry("doc")
	if len(entry.Snapshots) != config.MaxHistoryDepth {
		t.Fatalf("len(Snapshots) = %d, want %d", len(entry.Snapshots), config.MaxHistoryDepth)
	}
	if entry.CurrentIndex != config.MaxHistoryDepth-1 {
		t.Errorf("CurrentIndex = %d, want %d", entry.CurrentIndex, config.MaxHistoryDepth-1)
	}
	// The earliest 10 snapshots were evicted
	if entry.Snapshots[0] != "c10" {
		t.Errorf("Snapshots[0] = %q, want %q", entry.Snapshots[0], "c10")
	}
	if entry.Snapshots[len(entry.Snapshots)-1] != "c59" {
		t.Errorf("last snapshot = %q, want %q", entry.Snapshots[len(entry.Snapshots)-1], "c59")
	}
}

func TestInitializePreservesLineage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")
	store.Push(ctx, "doc", "c")

	// Re-initializing with the latest snapshot keeps the entry untouched
	store.Initialize(ctx, "doc", "c")
	entry := store.Entry("doc")
	if len(entry.Snapshots) != 3 || entry.CurrentIndex != 2 {
		t.Errorf("entry after no-op initialize = %v @ %d, want 3 snapshots @ 2",
			entry.Snapshots, entry.CurrentIndex)
	}

	// Re-initializing with different content replaces it
	store.Initialize(ctx, "doc", "x")
	entry = store.Entry("doc")
	if len(entry.Snapshots) != 1 || entry.Snapshots[0] != "x" || entry.CurrentIndex != 0 {
		t.Errorf("entry after replacing initialize = %v @ %d, want [x] @ 0",
			entry.Snapshots, entry.CurrentIndex)
	}
}

// Initialize compares against the LAST snapshot, not the cursor. After an
// undo those differ, and the defined behavior is the last-element comparison.
func TestInitializeComparesAgainstLastSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")
	if _, ok := store.Undo(ctx, "doc"); !ok {
		t.Fatal("Undo() failed")
	}

	// Cursor is at "a", last element is "b": initializing with "b" is a
	// no-op, initializing with "a" replaces the entry.
	store.Initialize(ctx, "doc", "b")
	entry := store.Entry("doc")
	if len(entry.Snapshots) != 2 || entry.CurrentIndex != 0 {
		t.Fatalf("entry = %v @ %d, want [a b] @ 0", entry.Snapshots, entry.CurrentIndex)
	}

	store.Initialize(ctx, "doc", "a")
	entry = store.Entry("doc")
	if len(entry.Snapshots) != 1 || entry.Snapshots[0] != "a" {
		t.Errorf("entry = %v, want [a]", entry.Snapshots)
	}
}

func TestResetAndDiscard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")

	store.Reset(ctx, "doc", "b")
	entry := store.Entry("doc")
	if len(entry.Snapshots) != 1 || entry.Snapshots[0] != "b" {
		t.Errorf("entry after Reset = %v, want [b]", entry.Snapshots)
	}
	if store.CanUndo(ctx, "doc") {
		t.Error("CanUndo() = true after Reset, want false")
	}

	store.Discard(ctx, "doc")
	if store.Entry("doc") != nil {
		t.Error("Entry() != nil after Discard")
	}
}

func TestUnknownDocumentNoOps(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.Push(ctx, "ghost", "content")
	if store.Entry("ghost") != nil {
		t.Error("Push on unknown id created an entry")
	}
	if _, ok := store.Undo(ctx, "ghost"); ok {
		t.Error("Undo on unknown id reported ok = true")
	}
	if _, ok := store.Redo(ctx, "ghost"); ok {
		t.Error("Redo on unknown id reported ok = true")
	}
	if store.CanUndo(ctx, "ghost") || store.CanRedo(ctx, "ghost") {
		t.Error("CanUndo/CanRedo on unknown id reported true")
	}
}

func TestPersistenceSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	store := NewStore(repo, testLogger())
	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")
	store.Push(ctx, "doc", "c")
	if _, ok := store.Undo(ctx, "doc"); !ok {
		t.Fatal("Undo() failed")
	}

	// A fresh store over the same repository resumes the undo lineage
	reloaded := NewStore(repo, testLogger())
	got, ok := reloaded.Undo(ctx, "doc")
	if !ok {
		t.Fatal("Undo() on reloaded store failed")
	}
	if got != "a" {
		t.Errorf("Undo() = %q, want %q", got, "a")
	}
	if !reloaded.CanRedo(ctx, "doc") {
		t.Error("CanRedo() = false on reloaded store, want true")
	}
}

func TestCanUndoRedoConsultPersistedState(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	store := NewStore(repo, testLogger())
	store.Initialize(ctx, "doc", "a")
	store.Push(ctx, "doc", "b")

	// A fresh store has nothing in memory yet; the boolean queries must
	// still agree with what Undo/Redo would do against the persisted stack
	reloaded := NewStore(repo, testLogger())
	if !reloaded.CanUndo(ctx, "doc") {
		t.Error("CanUndo() = false on reloaded store, want true")
	}
	if reloaded.CanRedo(ctx, "doc") {
		t.Error("CanRedo() = true on reloaded store, want false")
	}

	got, ok := reloaded.Undo(ctx, "doc")
	if !ok || got != "a" {
		t.Fatalf("Undo() = %q, %v; want %q, true", got, ok, "a")
	}
	if reloaded.CanUndo(ctx, "doc") {
		t.Error("CanUndo() = true at the bottom of the stack, want false")
	}
	if !reloaded.CanRedo(ctx, "doc") {
		t.Error("CanRedo() = false after undo, want true")
	}
}

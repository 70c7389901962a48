package services

import (
	"context"

	"inkwell/internal/domain/models"
)

// HistoryStore owns per-document undo/redo stacks of content snapshots.
//
// Operations are synchronous and never fail on an unknown id: undo/redo on a
// document without history report ok=false, boolean queries report false.
// Persistence behind the store is best-effort.
type HistoryStore interface {
	// Initialize creates a fresh single-snapshot entry for the document
	// unless an entry already exists whose most recent snapshot equals
	// content, in which case the existing entry is kept so reopening an
	// unchanged file resumes its undo lineage.
	Initialize(ctx context.Context, documentID, content string)

	// Push records content as a new step. Pushing the current snapshot
	// again is a no-op; pushing after an undo discards redo history; the
	// stack is capped by trimming its oldest snapshots.
	Push(ctx context.Context, documentID, content string)

	// Undo steps the cursor back and returns the new current snapshot.
	Undo(ctx context.Context, documentID string) (content string, ok bool)

	// Redo steps the cursor forward and returns the new current snapshot.
	Redo(ctx context.Context, documentID string) (content string, ok bool)

	// CanUndo and CanRedo report cursor bounds; false for unknown ids.
	// They consult the same persisted state as Undo/Redo, so they agree
	// with what those operations would do after a restart.
	CanUndo(ctx context.Context, documentID string) bool
	CanRedo(ctx context.Context, documentID string) bool

	// Reset unconditionally replaces the entry with a fresh
	// single-snapshot history.
	Reset(ctx context.Context, documentID, content string)

	// Discard removes the entry entirely (permanent document deletion).
	Discard(ctx context.Context, documentID string)

	// Entry returns a copy of the document's entry, or nil if absent.
	Entry(documentID string) *models.HistoryEntry
}

package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// HistoryRepository persists per-document undo/redo stacks.
//
// Persistence is best-effort: Load returns (nil, nil) for an unknown id or
// for malformed stored data, never a hard failure, so the in-memory store can
// always fall back to empty defaults.
type HistoryRepository interface {
	// Load retrieves the stored entry for a document, or nil if absent
	Load(ctx context.Context, documentID string) (*models.HistoryEntry, error)

	// Save stores the entry for a document, replacing any previous one
	Save(ctx context.Context, documentID string, entry *models.HistoryEntry) error

	// Delete removes the stored entry for a document
	Delete(ctx context.Context, documentID string) error
}

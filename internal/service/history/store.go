// Package history owns per-document undo/redo stacks of content snapshots.
package history

import (
	"context"
	"log/slog"
	"sync"

	"inkwell/internal/config"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
)

// store implements the HistoryStore interface.
//
// Entries live in memory and write through to a HistoryRepository on every
// mutation. Persistence is best-effort: a failed save is logged and the
// in-memory entry stays authoritative. One mutex guards the whole map; every
// operation is short and synchronous, so per-document locking buys nothing.
type store struct {
	mu      sync.Mutex
	entries map[string]*models.HistoryEntry
	repo    repositories.HistoryRepository
	logger  *slog.Logger
}

// NewStore creates a new history store
func NewStore(repo repositories.HistoryRepository, logger *slog.Logger) services.HistoryStore {
	return &store{
		entries: make(map[string]*models.HistoryEntry),
		repo:    repo,
		logger:  logger,
	}
}

// Initialize creates a fresh entry unless one already exists whose most
// recent snapshot equals content.
//
// "Most recent" here is deliberately the LAST element of the stack, not the
// one under the cursor: after an undo the two differ, and the original
// behavior compared against the last element. Re-opening a file that was
// edited, undone and saved therefore still resets the entry, while re-opening
// an unchanged file keeps its undo lineage intact.
func (s *store) Initialize(ctx context.Context, documentID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	if entry != nil && entry.Snapshots[len(entry.Snapshots)-1] == content {
		return
	}

	s.replace(ctx, documentID, content)
}

// Push records content as a new step.
func (s *store) Push(ctx context.Context, documentID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	if entry == nil {
		// Unknown document: nothing to do, not an error
		return
	}
	if entry.Current() == content {
		// Idempotent push
		return
	}

	// Truncate redo history, append, advance
	entry.Snapshots = append(entry.Snapshots[:entry.CurrentIndex+1], content)
	entry.CurrentIndex = len(entry.Snapshots) - 1

	// Enforce the cap by dropping the oldest snapshots. The cursor is at
	// the end, so renormalizing keeps it on the same logical snapshot.
	if excess := len(entry.Snapshots) - config.MaxHistoryDepth; excess > 0 {
		entry.Snapshots = append([]string(nil), entry.Snapshots[excess:]...)
		entry.CurrentIndex -= excess
	}

	s.persist(ctx, documentID, entry)
}

// Undo steps the cursor back and returns the new current snapshot.
func (s *store) Undo(ctx context.Context, documentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	if entry == nil || entry.CurrentIndex <= 0 {
		return "", false
	}

	entry.CurrentIndex--
	s.persist(ctx, documentID, entry)
	return entry.Current(), true
}

// Redo steps the cursor forward and returns the new current snapshot.
func (s *store) Redo(ctx context.Context, documentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	if entry == nil || entry.CurrentIndex >= len(entry.Snapshots)-1 {
		return "", false
	}

	entry.CurrentIndex++
	s.persist(ctx, documentID, entry)
	return entry.Current(), true
}

// CanUndo reports whether an undo step exists; false for unknown ids.
// Faults the entry in like Undo does, so the answer matches what Undo would
// do even when the entry only exists in persisted storage.
func (s *store) CanUndo(ctx context.Context, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	return entry != nil && entry.CurrentIndex > 0
}

// CanRedo reports whether a redo step exists; false for unknown ids.
func (s *store) CanRedo(ctx context.Context, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(ctx, documentID)
	return entry != nil && entry.CurrentIndex < len(entry.Snapshots)-1
}

// Reset unconditionally replaces the entry with a fresh single-snapshot
// history.
func (s *store) Reset(ctx context.Context, documentID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(ctx, documentID, content)
}

// Discard removes the entry entirely.
func (s *store) Discard(ctx context.Context, documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, documentID)
	if err := s.repo.Delete(ctx, documentID); err != nil {
		s.logger.Warn("failed to delete persisted history entry",
			"document_id", documentID,
			"error", err,
		)
	}
}

// Entry returns a copy of the document's entry, or nil if absent.
func (s *store) Entry(documentID string) *models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[documentID]
	if !ok {
		return nil
	}
	return entry.Clone()
}

// entry returns the in-memory entry, faulting it in from the repository on
// first touch. Callers hold the mutex.
func (s *store) entry(ctx context.Context, documentID string) *models.HistoryEntry {
	if entry, ok := s.entries[documentID]; ok {
		return entry
	}

	entry, err := s.repo.Load(ctx, documentID)
	if err != nil {
		s.logger.Warn("failed to load persisted history entry",
			"document_id", documentID,
			"error", err,
		)
		return nil
	}
	if entry == nil {
		return nil
	}

	s.entries[documentID] = entry
	return entry
}

// replace installs a fresh single-snapshot entry. Callers hold the mutex.
func (s *store) replace(ctx context.Context, documentID, content string) {
	entry := &models.HistoryEntry{Snapshots: []string{content}, CurrentIndex: 0}
	s.entries[documentID] = entry
	s.persist(ctx, documentID, entry)
}

// persist writes an entry through to storage, best-effort. Callers hold the
// mutex.
func (s *store) persist(ctx context.Context, documentID string, entry *models.HistoryEntry) {
	if err := s.repo.Save(ctx, documentID, entry); err != nil {
		s.logger.Warn("failed to persist history entry",
			"document_id", documentID,
			"error", err,
		)
	}
}

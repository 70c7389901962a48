package models

// HistoryEntry is a document's undo/redo stack: an ordered sequence of full
// content snapshots plus a cursor into it.
//
// Invariants:
//   - 0 <= CurrentIndex < len(Snapshots) whenever the entry exists
//   - consecutive identical snapshots are never recorded as separate steps
//   - snapshots after CurrentIndex are redo history and are discarded when a
//     new step is pushed after an undo
type HistoryEntry struct {
	Snapshots    []string `json:"history"`
	CurrentIndex int      `json:"currentIndex"`
}

// Current returns the snapshot the cursor points at.
func (e *HistoryEntry) Current() string {
	return e.Snapshots[e.CurrentIndex]
}

// Clone returns a deep copy so callers can hand entries out without
// exposing the store's internal slices.
func (e *HistoryEntry) Clone() *HistoryEntry {
	snapshots := make([]string, len(e.Snapshots))
	copy(snapshots, e.Snapshots)
	return &HistoryEntry{Snapshots: snapshots, CurrentIndex: e.CurrentIndex}
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// SQLiteHistoryRepository implements the HistoryRepository interface.
// Snapshots are stored as a JSON array per document; history persistence is
// best-effort, so malformed stored data reads back as absent.
type SQLiteHistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(config *RepositoryConfig) repositories.HistoryRepository {
	return &SQLiteHistoryRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Load retrieves the stored entry for a document, or nil if absent
func (r *SQLiteHistoryRepository) Load(ctx context.Context, documentID string) (*models.HistoryEntry, error) {
	var snapshotsJSON string
	var currentIndex int

	err := r.db.QueryRowContext(ctx, `
		SELECT snapshots, current_index
		FROM history_entries
		WHERE document_id = ?`, documentID).Scan(&snapshotsJSON, &currentIndex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load history entry: %w", err)
	}

	var snapshots []string
	if err := json.Unmarshal([]byte(snapshotsJSON), &snapshots); err != nil {
		// Malformed stored data yields empty defaults, never a hard failure
		r.logger.Warn("discarding malformed history entry",
			"document_id", documentID,
			"error", err,
		)
		return nil, nil
	}
	if len(snapshots) == 0 || currentIndex < 0 || currentIndex >= len(snapshots) {
		r.logger.Warn("discarding out-of-bounds history entry",
			"document_id", documentID,
			"snapshots", len(snapshots),
			"current_index", currentIndex,
		)
		return nil, nil
	}

	return &models.HistoryEntry{Snapshots: snapshots, CurrentIndex: currentIndex}, nil
}

// Save stores the entry for a document, replacing any previous one
func (r *SQLiteHistoryRepository) Save(ctx context.Context, documentID string, entry *models.HistoryEntry) error {
	snapshotsJSON, err := json.Marshal(entry.Snapshots)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO history_entries (document_id, snapshots, current_index, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
		  snapshots = excluded.snapshots,
		  current_index = excluded.current_index,
		  updated_at = excluded.updated_at`,
		documentID,
		string(snapshotsJSON),
		entry.CurrentIndex,
		time.Now().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save history entry: %w", err)
	}
	return nil
}

// Delete removes the stored entry for a document
func (r *SQLiteHistoryRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM history_entries WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	return nil
}

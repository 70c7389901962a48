package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// TranscriptRepository persists the chat transcript.
//
// Timestamps round-trip through storage as RFC 3339 strings and are
// rehydrated into time.Time on load. Malformed rows are skipped rather than
// failing the whole load.
type TranscriptRepository interface {
	// Load retrieves all messages, sorted by timestamp ascending
	Load(ctx context.Context) ([]models.ChatMessage, error)

	// Save inserts or replaces a message
	Save(ctx context.Context, msg *models.ChatMessage) error

	// Delete removes a message by id
	Delete(ctx context.Context, id string) error
}

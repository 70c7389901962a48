package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// SQLiteTranscriptRepository implements the TranscriptRepository interface
type SQLiteTranscriptRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(config *RepositoryConfig) repositories.TranscriptRepository {
	return &SQLiteTranscriptRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Load retrieves all messages, sorted by timestamp ascending.
// Rows whose timestamps no longer parse are skipped, not fatal.
func (r *SQLiteTranscriptRepository) Load(ctx context.Context) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender, text, timestamp, attachment, attachment_mime, preview_ref
		FROM chat_messages
		ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		var timestamp string
		var attachment []byte
		var mimeType, previewRef sql.NullString

		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Text, &timestamp, &attachment, &mimeType, &previewRef); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}

		msg.Timestamp, err = parseTime(timestamp)
		if err != nil {
			r.logger.Warn("skipping chat message with malformed timestamp",
				"id", msg.ID,
				"error", err,
			)
			continue
		}

		if mimeType.Valid {
			msg.Attachment = &models.Attachment{
				Data:     attachment,
				MIMEType: mimeType.String,
			}
			if previewRef.Valid {
				msg.Attachment.PreviewRef = previewRef.String
			}
		}

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	models.SortTranscript(messages)
	return messages, nil
}

// Save inserts or replaces a message
func (r *SQLiteTranscriptRepository) Save(ctx context.Context, msg *models.ChatMessage) error {
	var attachment []byte
	var mimeType, previewRef *string
	if msg.Attachment != nil {
		attachment = msg.Attachment.Data
		mimeType = &msg.Attachment.MIMEType
		if msg.Attachment.PreviewRef != "" {
			previewRef = &msg.Attachment.PreviewRef
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, sender, text, timestamp, attachment, attachment_mime, preview_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  sender = excluded.sender,
		  text = excluded.text,
		  timestamp = excluded.timestamp,
		  attachment = excluded.attachment,
		  attachment_mime = excluded.attachment_mime,
		  preview_ref = excluded.preview_ref`,
		msg.ID,
		msg.Sender,
		msg.Text,
		msg.Timestamp.Format(timeLayout),
		attachment,
		mimeType,
		previewRef,
	)
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

// Delete removes a message by id
func (r *SQLiteTranscriptRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return nil
}

package collab

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// Transcript is the in-memory chat transcript, write-through persisted.
//
// The hard invariant: messages are sorted by timestamp ascending after every
// mutation. Edits can rewrite a message's timestamp, so ordering is
// re-enforced rather than assumed. Persistence is best-effort; a failed save
// is logged and the in-memory transcript stays authoritative.
type Transcript struct {
	messages []models.ChatMessage
	repo     repositories.TranscriptRepository
	logger   *slog.Logger
}

// NewTranscript loads the persisted transcript; load failures yield an
// empty transcript, never a hard failure.
func NewTranscript(ctx context.Context, repo repositories.TranscriptRepository, logger *slog.Logger) *Transcript {
	messages, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("failed to load persisted transcript, starting empty", "error", err)
		messages = nil
	}
	return &Transcript{
		messages: messages,
		repo:     repo,
		logger:   logger,
	}
}

// Append adds a message and re-sorts.
func (t *Transcript) Append(ctx context.Context, msg models.ChatMessage) {
	t.messages = append(t.messages, msg)
	t.finish(ctx, &msg)
}

// InsertAfter places a message immediately after the message with afterID
// (appending when afterID is absent), then re-sorts. The practical ordering
// is governed by timestamps; the insertion position is the tie-break when
// they collide.
func (t *Transcript) InsertAfter(ctx context.Context, afterID string, msg models.ChatMessage) {
	idx := t.indexOf(afterID)
	if idx < 0 {
		t.messages = append(t.messages, msg)
	} else {
		t.messages = append(t.messages[:idx+1],
			append([]models.ChatMessage{msg}, t.messages[idx+1:]...)...)
	}
	t.finish(ctx, &msg)
}

// Remove deletes a message by id; no cascading deletion of adjacent
// messages. Reports whether the message existed.
func (t *Transcript) Remove(ctx context.Context, id string) bool {
	idx := t.indexOf(id)
	if idx < 0 {
		return false
	}
	t.removeAt(ctx, idx)
	models.SortTranscript(t.messages)
	return true
}

// RemoveAssistantByPrefixes deletes every assistant message whose text
// starts with one of the given prefixes.
func (t *Transcript) RemoveAssistantByPrefixes(ctx context.Context, prefixes ...string) {
	kept := t.messages[:0]
	for _, msg := range t.messages {
		if msg.Sender == models.SenderAssistant && hasAnyPrefix(msg.Text, prefixes) {
			if err := t.repo.Delete(ctx, msg.ID); err != nil {
				t.logger.Warn("failed to delete persisted chat message", "id", msg.ID, "error", err)
			}
			continue
		}
		kept = append(kept, msg)
	}
	t.messages = kept
	models.SortTranscript(t.messages)
}

// RewriteUserMessage overwrites a user message's text, bumps its timestamp
// to now and removes the immediately following assistant message, which is
// the stale response being superseded. Returns a copy of the edited message.
func (t *Transcript) RewriteUserMessage(ctx context.Context, id, newText string, now time.Time) (*models.ChatMessage, bool) {
	idx := t.indexOf(id)
	if idx < 0 || t.messages[idx].Sender != models.SenderUser {
		return nil, false
	}

	t.messages[idx].Text = newText
	t.messages[idx].Timestamp = now
	edited := t.messages[idx]

	if idx+1 < len(t.messages) && t.messages[idx+1].Sender == models.SenderAssistant {
		t.removeAt(ctx, idx+1)
	}

	t.finish(ctx, &edited)
	return &edited, true
}

// Messages returns a copy of the transcript, sorted by timestamp ascending.
func (t *Transcript) Messages() []models.ChatMessage {
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// finish persists msg and re-enforces the ordering invariant.
func (t *Transcript) finish(ctx context.Context, msg *models.ChatMessage) {
	if err := t.repo.Save(ctx, msg); err != nil {
		t.logger.Warn("failed to persist chat message", "id", msg.ID, "error", err)
	}
	models.SortTranscript(t.messages)
}

func (t *Transcript) indexOf(id string) int {
	for i := range t.messages {
		if t.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Transcript) removeAt(ctx context.Context, idx int) {
	id := t.messages[idx].ID
	t.messages = append(t.messages[:idx], t.messages[idx+1:]...)
	if err := t.repo.Delete(ctx, id); err != nil {
		t.logger.Warn("failed to delete persisted chat message", "id", id, "error", err)
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

package collab

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
)

// Fixed assistant texts. The welcome prefixes double as the markers used to
// find and remove stale welcome messages.
const (
	errorReplyText = "Sorry, something went wrong while reaching the assistant. Please try again."

	noActiveDocumentNote = "\n\nNote: no document was open, so nothing was changed. Open a document and ask again."

	documentUpdatedFallbackText = "I've updated the document."

	welcomeOpenedPrefix  = "You've opened "
	welcomeCreatedPrefix = "You've created "
)

// coordinator implements the Collaborator interface.
//
// At most one backend call is in flight at a time: busy gates both
// SendMessage and EditAndRegenerate, so two turns can never interleave their
// transcript insertions. Everything else the coordinator does is synchronous
// under its mutex; the mutex is released around the provider call itself.
type coordinator struct {
	mu   sync.Mutex
	busy bool

	activeDocID  *string
	undoSnapshot *string   // content before the latest AI-applied edit
	pulseUntil   time.Time // transient "collaborating" indicator deadline

	transcript *Transcript
	provider   services.AssistProvider
	gateway    services.ContentGateway
	docRepo    repositories.DocumentRepository
	model      string
	logger     *slog.Logger
}

// NewCoordinator creates the AI collaboration coordinator
func NewCoordinator(
	transcript *Transcript,
	provider services.AssistProvider,
	gateway services.ContentGateway,
	docRepo repositories.DocumentRepository,
	model string,
	logger *slog.Logger,
) services.Collaborator {
	return &coordinator{
		transcript: transcript,
		provider:   provider,
		gateway:    gateway,
		docRepo:    docRepo,
		model:      model,
		logger:     logger,
	}
}

// SendMessage starts a new collaboration turn.
func (c *coordinator) SendMessage(ctx context.Context, req *services.SendMessageRequest) (*models.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)

	// Validate before any state mutation
	if text == "" && req.Attachment == nil {
		return nil, fmt.Errorf("%w: message needs text or an attachment", domain.ErrValidation)
	}
	if len(text) > config.MaxMessageLength {
		return nil, fmt.Errorf("%w: message too long", domain.ErrValidation)
	}
	if req.Attachment != nil && len(req.Attachment.Data) > config.MaxAttachmentBytes {
		return nil, fmt.Errorf("%w: attachment too large", domain.ErrValidation)
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, domain.ErrBusy
	}
	activeID := c.activeDocID
	if text != "" && req.Attachment == nil && activeID == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: open a document to collaborate on", domain.ErrValidation)
	}
	c.busy = true
	// Starting a new turn invalidates the previous AI undo target
	c.undoSnapshot = nil

	userMsg := models.ChatMessage{
		ID:         newMessageID(),
		Sender:     models.SenderUser,
		Text:       text,
		Timestamp:  time.Now(),
		Attachment: req.Attachment,
	}
	c.transcript.Append(ctx, userMsg)
	c.mu.Unlock()

	defer c.release()

	return c.runTurn(ctx, activeID, text, req.Attachment, userMsg.ID)
}

// EditAndRegenerate rewrites an existing user message and re-issues the
// backend call, superseding the stale assistant reply.
func (c *coordinator) EditAndRegenerate(ctx context.Context, messageID, newText string) (*models.ChatMessage, error) {
	text := strings.TrimSpace(newText)
	if text == "" {
		return nil, fmt.Errorf("%w: revised message must not be empty", domain.ErrValidation)
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, domain.ErrBusy
	}
	c.busy = true
	activeID := c.activeDocID

	edited, ok := c.transcript.RewriteUserMessage(ctx, messageID, text, time.Now())
	if !ok {
		c.busy = false
		c.mu.Unlock()
		return nil, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	c.mu.Unlock()

	defer c.release()

	// Same backend call as a fresh turn, with the original attachment
	return c.runTurn(ctx, activeID, text, edited.Attachment, edited.ID)
}

// DeleteMessage removes a message by id. Unknown ids are a silent no-op.
func (c *coordinator) DeleteMessage(ctx context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.transcript.Remove(ctx, messageID) {
		c.logger.Debug("delete of unknown chat message ignored", "id", messageID)
	}
	return nil
}

// UndoAIChange restores the content captured before the latest AI-applied
// edit, exactly once.
func (c *coordinator) UndoAIChange(ctx context.Context) (bool, error) {
	c.mu.Lock()
	snapshot := c.undoSnapshot
	activeID := c.activeDocID
	if snapshot == nil || activeID == nil {
		c.mu.Unlock()
		return false, nil
	}
	c.undoSnapshot = nil
	c.mu.Unlock()

	if err := c.gateway.ApplyContentChange(ctx, *activeID, *snapshot); err != nil {
		// The snapshot was not consumed; keep it for a retry
		c.mu.Lock()
		c.undoSnapshot = snapshot
		c.mu.Unlock()
		return false, err
	}

	c.logger.Info("ai change undone", "document_id", *activeID)
	return true, nil
}

// AddWelcomeMessage replaces any prior document-opened/created notice with a
// fresh one distinguishing "created" from "opened" phrasing.
func (c *coordinator) AddWelcomeMessage(ctx context.Context, fileName string, isNewFile bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript.RemoveAssistantByPrefixes(ctx, welcomeOpenedPrefix, welcomeCreatedPrefix)

	text := fmt.Sprintf("%s%q. Ask me to read it, answer questions about it, or rewrite it.",
		welcomeOpenedPrefix, fileName)
	if isNewFile {
		text = fmt.Sprintf("%s%q. Tell me what it should contain and I'll draft it with you.",
			welcomeCreatedPrefix, fileName)
	}

	c.transcript.Append(ctx, models.ChatMessage{
		ID:        newMessageID(),
		Sender:    models.SenderAssistant,
		Text:      text,
		Timestamp: time.Now(),
	})
	return nil
}

// OnActiveDocumentChanged is invoked by the session controller. The undo
// target never crosses documents.
func (c *coordinator) OnActiveDocumentChanged(_ context.Context, _, newID *string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeDocID = newID
	c.undoSnapshot = nil
}

// Transcript returns the messages sorted by timestamp ascending.
func (c *coordinator) Transcript(_ context.Context) []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// Busy reports whether a backend call is in flight.
func (c *coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Collaborating reports whether the transient post-rewrite indicator is
// still raised.
func (c *coordinator) Collaborating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.pulseUntil)
}

// runTurn performs the provider call and folds its result into the
// transcript and, for document updates, the active document. Every failure
// is recovered as a fixed-text assistant message; runTurn itself only
// returns the appended assistant message.
func (c *coordinator) runTurn(ctx context.Context, activeID *string, text string, attachment *models.Attachment, afterID string) (*models.ChatMessage, error) {
	var docContent *string
	if activeID != nil {
		doc, err := c.docRepo.GetByID(ctx, *activeID, false)
		if err != nil {
			c.logger.Warn("active document unavailable for turn", "document_id", *activeID, "error", err)
			activeID = nil
		} else {
			docContent = &doc.Content
		}
	}

	result, err := c.provider.RequestAssistance(ctx, &services.AssistRequest{
		UserText:        text,
		DocumentContent: docContent,
		Attachment:      attachment,
		Model:           c.model,
	})
	if err == nil {
		// A malformed response shape is handled exactly like a
		// transport failure
		err = result.Validate()
	}

	reply := models.ChatMessage{
		ID:        newMessageID(),
		Sender:    models.SenderAssistant,
		Timestamp: time.Now(),
	}

	switch {
	case err != nil:
		c.logger.Warn("assist request failed", "error", err)
		reply.Text = errorReplyText

	case result.Kind == services.AssistKindDocumentUpdate && activeID != nil:
		c.mu.Lock()
		snapshot := *docContent
		c.undoSnapshot = &snapshot
		c.mu.Unlock()

		if applyErr := c.gateway.ApplyContentChange(ctx, *activeID, result.NewContent); applyErr != nil {
			c.logger.Warn("failed to apply assistant document update", "document_id", *activeID, "error", applyErr)
			c.mu.Lock()
			c.undoSnapshot = nil
			c.mu.Unlock()
			reply.Text = errorReplyText
		} else {
			c.raisePulse()
			reply.Text = result.ReplyText
			if reply.Text == "" {
				reply.Text = documentUpdatedFallbackText
			}
		}

	case result.Kind == services.AssistKindDocumentUpdate:
		// The assistant rewrote a document nobody has open: keep the
		// explanation, touch nothing
		reply.Text = result.ReplyText
		if reply.Text == "" {
			reply.Text = documentUpdatedFallbackText
		}
		reply.Text += noActiveDocumentNote

	default:
		reply.Text = result.ReplyText
	}

	c.mu.Lock()
	c.transcript.InsertAfter(ctx, afterID, reply)
	c.mu.Unlock()

	return &reply, nil
}

// release clears the busy flag; deferred so it runs on every turn outcome.
func (c *coordinator) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// raisePulse arms the transient "collaborating" indicator.
func (c *coordinator) raisePulse() {
	c.mu.Lock()
	c.pulseUntil = time.Now().Add(config.CollabPulseDuration)
	c.mu.Unlock()
}

// newMessageID returns a ULID: unique, and lexicographically ordered by
// creation time, which gives the transcript sort a stable tie-break.
func newMessageID() string {
	return ulid.Make().String()
}

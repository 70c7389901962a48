package services

import (
	"context"
	"fmt"

	"inkwell/internal/domain/models"
)

// Assist result kinds. Anything else coming back from a provider is rejected
// at the boundary as a transport failure.
const (
	AssistKindDocumentUpdate = "document_update"
	AssistKindChatReply      = "chat_reply"
)

// AssistRequest is a single request to the AI collaborator.
type AssistRequest struct {
	UserText        string
	DocumentContent *string // nil when no document is active
	Attachment      *models.Attachment
	Model           string
}

// AssistResult is the tagged variant returned by a provider: either a full
// document rewrite with explanatory text, or a plain conversational reply.
type AssistResult struct {
	Kind       string
	NewContent string // document_update only
	ReplyText  string
}

// Validate rejects malformed provider output so a bad response shape is
// handled exactly like a transport failure.
func (r *AssistResult) Validate() error {
	switch r.Kind {
	case AssistKindDocumentUpdate:
		if r.NewContent == "" {
			return fmt.Errorf("document_update result missing new content")
		}
	case AssistKindChatReply:
		if r.ReplyText == "" {
			return fmt.Errorf("chat_reply result missing reply text")
		}
	default:
		return fmt.Errorf("unknown assist result kind %q", r.Kind)
	}
	return nil
}

// AssistProvider is the backend AI call: one request, one response.
type AssistProvider interface {
	// Name returns the provider name
	Name() string

	// SupportsModel reports whether the provider can serve the model
	SupportsModel(model string) bool

	// RequestAssistance performs the backend call. Fails only by error;
	// the coordinator recovers every failure as a fixed-text assistant
	// message.
	RequestAssistance(ctx context.Context, req *AssistRequest) (*AssistResult, error)
}

// Collaborator mediates between the user, the active document and the AI
// assistant. At most one backend call is in flight at a time; both the send
// and the edit-and-regenerate paths share the same busy gate.
type Collaborator interface {
	ActiveDocumentObserver

	// SendMessage starts a new collaboration turn. Returns the assistant
	// message appended to the transcript.
	SendMessage(ctx context.Context, req *SendMessageRequest) (*models.ChatMessage, error)

	// EditAndRegenerate rewrites an existing user message, removes its
	// stale assistant reply and re-issues the backend call.
	EditAndRegenerate(ctx context.Context, messageID, newText string) (*models.ChatMessage, error)

	// DeleteMessage removes a message by id; no cascading deletion.
	DeleteMessage(ctx context.Context, messageID string) error

	// UndoAIChange restores the content captured before the latest
	// AI-applied edit. Reports whether anything was restored.
	UndoAIChange(ctx context.Context) (bool, error)

	// AddWelcomeMessage replaces any prior document-opened/created notice
	// with a fresh one for the named file.
	AddWelcomeMessage(ctx context.Context, fileName string, isNewFile bool) error

	// Transcript returns the messages sorted by timestamp ascending.
	Transcript(ctx context.Context) []models.ChatMessage

	// Busy reports whether a backend call is in flight.
	Busy() bool

	// Collaborating reports whether the transient post-rewrite indicator
	// is currently raised.
	Collaborating() bool
}

// SendMessageRequest is the DTO for starting a collaboration turn
type SendMessageRequest struct {
	Text       string             `json:"text"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
}

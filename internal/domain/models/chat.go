package models

import (
	"sort"
	"time"
)

// Message senders
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Attachment is an opaque image payload carried on a chat message.
type Attachment struct {
	Data       []byte `json:"data,omitempty"`
	MIMEType   string `json:"mime_type"`
	PreviewRef string `json:"preview_ref,omitempty"` // display-preview reference for the UI
}

// ChatMessage is one entry in the collaboration transcript.
// The transcript is always kept sorted by Timestamp ascending; edits can
// rewrite a message's timestamp, so ordering is re-enforced after every
// mutation rather than assumed.
type ChatMessage struct {
	ID         string      `json:"id" db:"id"`
	Sender     string      `json:"sender" db:"sender"`
	Text       string      `json:"text" db:"text"`
	Timestamp  time.Time   `json:"timestamp" db:"timestamp"`
	Attachment *Attachment `json:"attachment,omitempty" db:"attachment"`
	Streaming  bool        `json:"streaming,omitempty" db:"-"`
}

// SortTranscript orders messages by timestamp ascending. Message IDs are
// ULIDs, so the ID comparison is a stable creation-order tie-break when
// timestamps collide.
func SortTranscript(messages []ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

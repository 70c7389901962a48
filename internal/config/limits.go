package config

import "time"

const (
	// MaxHistoryDepth is the maximum number of content snapshots retained
	// per document. When a push exceeds it the oldest snapshots are dropped
	// and the cursor is renormalized, so recent undo steps always survive.
	MaxHistoryDepth = 50

	// MaxDocumentNameLength is the maximum length for document names.
	// Short names keep tree rendering and path display sane.
	MaxDocumentNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as document names for consistency.
	MaxFolderNameLength = 255

	// MaxMessageLength is the maximum length of a single chat message.
	// Larger payloads should arrive as attachments instead.
	MaxMessageLength = 100_000

	// MaxAttachmentBytes is the maximum size of an image attachment.
	MaxAttachmentBytes = 10 << 20

	// CollabPulseDuration is how long the transient "collaborating"
	// indicator stays raised after the assistant rewrites a document.
	CollabPulseDuration = 500 * time.Millisecond
)

package services

import (
	"context"

	"inkwell/internal/domain/models"
)

// ContentGateway is the single choke point through which document content
// changes are applied. Every writer (manual editor, tabular editor, AI
// coordinator) routes full replacement content through ApplyContentChange so
// stored content and undo history can never desynchronize.
type ContentGateway interface {
	// ApplyContentChange stores newContent and pushes it onto the
	// document's history entry, in that order.
	ApplyContentChange(ctx context.Context, documentID, newContent string) error

	// Undo and Redo move the history cursor and write the resulting
	// snapshot back to storage WITHOUT a history push, since undo/redo
	// must not create forward history.
	Undo(ctx context.Context, documentID string) (*models.Document, error)
	Redo(ctx context.Context, documentID string) (*models.Document, error)
}

// DocumentService defines the business logic for workspace documents
type DocumentService interface {
	// CreateDocument creates a new document and initializes its history
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// RenameDocument renames a document
	RenameDocument(ctx context.Context, id, name string) (*models.Document, error)

	// MoveDocument moves a document to another folder (nil = root)
	MoveDocument(ctx context.Context, id string, folderID *string) (*models.Document, error)

	// TrashDocument soft-deletes a document; history entries survive
	TrashDocument(ctx context.Context, id string) error

	// RestoreDocument brings a trashed document back
	RestoreDocument(ctx context.Context, id string) error

	// DeleteDocument permanently deletes a document and discards its
	// history entry
	DeleteDocument(ctx context.Context, id string) error

	// ListTrash lists soft-deleted documents
	ListTrash(ctx context.Context) ([]models.Document, error)
}

// CreateDocumentRequest is the DTO for creating a new document
type CreateDocumentRequest struct {
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	Kind     string  `json:"kind,omitempty"`
	FolderID *string `json:"folder_id,omitempty"`
}

// FolderService defines the business logic for workspace folders
type FolderService interface {
	CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*models.Folder, error)
	MoveFolder(ctx context.Context, id string, parentID *string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	GetTree(ctx context.Context) (*models.TreeNode, error)
}

// LayoutNotifier receives panel visibility signals from the session
// controller. The surrounding UI shell implements it; the server carries a
// queryable in-memory implementation.
type LayoutNotifier interface {
	// ExpandPanel ensures the auxiliary panel is visible at size (percent)
	ExpandPanel(size int)

	// CollapsePanel hides the auxiliary panel
	CollapsePanel()
}

// SessionController tracks which document is active and re-initializes the
// collaboration state when that changes.
type SessionController interface {
	// SetActiveDocument switches the active document (nil deactivates).
	// On change it clears the AI undo snapshot, initializes history for
	// the new document, emits a welcome message and signals the layout.
	SetActiveDocument(ctx context.Context, id *string) error

	// ActivateNewDocument is SetActiveDocument for a freshly created
	// document; the welcome message uses "created" phrasing.
	ActivateNewDocument(ctx context.Context, id string) error

	// ActiveDocumentID returns the currently active document id, or nil.
	ActiveDocumentID() *string
}

// ActiveDocumentObserver is invoked by the session controller whenever the
// active document changes. Deterministic replacement for reactive
// effect re-evaluation: the controller calls it exactly once per change.
type ActiveDocumentObserver interface {
	OnActiveDocumentChanged(ctx context.Context, oldID, newID *string)
}

package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID. Trashed documents are excluded
	// unless includeTrashed is set.
	GetByID(ctx context.Context, id string, includeTrashed bool) (*models.Document, error)

	// Update updates an existing document's metadata and content
	Update(ctx context.Context, doc *models.Document) error

	// SetContent replaces a document's content only
	SetContent(ctx context.Context, id, content string) error

	// SoftDelete moves a document to the trash
	SoftDelete(ctx context.Context, id string) error

	// Restore brings a trashed document back
	Restore(ctx context.Context, id string) error

	// Delete permanently removes a document
	Delete(ctx context.Context, id string) error

	// ListByFolder lists live documents in a folder (nil = root)
	ListByFolder(ctx context.Context, folderID *string) ([]models.Document, error)

	// ListTrashed lists soft-deleted documents
	ListTrashed(ctx context.Context) ([]models.Document, error)
}

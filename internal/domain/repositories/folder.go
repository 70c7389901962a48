package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update updates a folder's name or parent
	Update(ctx context.Context, folder *models.Folder) error

	// SoftDelete moves a folder to the trash
	SoftDelete(ctx context.Context, id string) error

	// Delete permanently removes a folder
	Delete(ctx context.Context, id string) error

	// ListByParent lists live folders under a parent (nil = root)
	ListByParent(ctx context.Context, parentID *string) ([]models.Folder, error)
}

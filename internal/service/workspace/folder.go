package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
)

// folderService implements the FolderService interface
type folderService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		logger:     logger,
	}
}

// CreateFolder creates a new folder
func (s *folderService) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	if err := validateFolderName(name); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		ID:        uuid.New().String(),
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "name", name, "parent_id", parentID)
	return folder, nil
}

// RenameFolder renames a folder
func (s *folderService) RenameFolder(ctx context.Context, id, name string) (*models.Folder, error) {
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	folder.Name = name
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "name", name)
	return folder, nil
}

// MoveFolder moves a folder under a new parent (nil = root). Moving a
// folder into itself or its own subtree is rejected.
func (s *folderService) MoveFolder(ctx context.Context, id string, parentID *string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == id {
			return nil, fmt.Errorf("%w: cannot move a folder into itself", domain.ErrValidation)
		}
		if err := s.checkNotDescendant(ctx, id, *parentID); err != nil {
			return nil, err
		}
	}

	folder.ParentID = parentID
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", id, "parent_id", parentID)
	return folder, nil
}

// DeleteFolder soft-deletes a folder. Contained documents stay in place and
// become reachable through the trash listing of their own lifecycle; the
// tree simply stops showing the folder.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.folderRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder trashed", "id", id)
	return nil
}

// GetTree builds the full workspace tree from the root
func (s *folderService) GetTree(ctx context.Context) (*models.TreeNode, error) {
	root := &models.TreeNode{}
	if err := s.fillNode(ctx, root, nil); err != nil {
		return nil, err
	}
	return root, nil
}

func (s *folderService) fillNode(ctx context.Context, node *models.TreeNode, parentID *string) error {
	folders, err := s.folderRepo.ListByParent(ctx, parentID)
	if err != nil {
		return err
	}
	docs, err := s.docRepo.ListByFolder(ctx, parentID)
	if err != nil {
		return err
	}

	node.Documents = docs
	node.Folders = make([]models.TreeNode, len(folders))
	for i := range folders {
		folder := folders[i]
		node.Folders[i] = models.TreeNode{Folder: &folder}
		if err := s.fillNode(ctx, &node.Folders[i], &folder.ID); err != nil {
			return err
		}
	}
	return nil
}

// checkNotDescendant walks up from candidate to the root, rejecting the move
// if folderID appears on the way.
func (s *folderService) checkNotDescendant(ctx context.Context, folderID, candidateID string) error {
	currentID := &candidateID
	for currentID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *currentID)
		if err != nil {
			return err
		}
		if folder.ID == folderID {
			return fmt.Errorf("%w: cannot move a folder into its own subtree", domain.ErrValidation)
		}
		currentID = folder.ParentID
	}
	return nil
}

func validateFolderName(name string) error {
	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
	); err != nil {
		return fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}
	return nil
}

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

// documentService implements the DocumentService interface
type documentService struct {
	docRepo    repositories.DocumentRepository
	folderRepo repositories.FolderRepository
	store      services.HistoryStore
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	folderRepo repositories.FolderRepository,
	store services.HistoryStore,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		folderRepo: folderRepo,
		store:      store,
		logger:     logger,
	}
}

// CreateDocument creates a new document and initializes its history
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty folder_id to nil for root-level documents
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, err
		}
	}

	kind := req.Kind
	if kind == "" {
		kind = models.DocumentKindText
	}

	doc := &models.Document{
		ID:        uuid.New().String(),
		FolderID:  req.FolderID,
		Name:      req.Name,
		Content:   req.Content,
		Kind:      kind,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	// A fresh document starts its undo lineage at its initial content
	s.store.Initialize(ctx, doc.ID, doc.Content)

	s.logger.Info("document created",
		"id", doc.ID,
		"name", doc.Name,
		"kind", doc.Kind,
		"folder_id", req.FolderID,
	)

	return doc, nil
}

// GetDocument retrieves a document by ID
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, id, false)
}

// RenameDocument renames a document
func (s *documentService) RenameDocument(ctx context.Context, id, name string) (*models.Document, error) {
	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxDocumentNameLength),
	); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	doc, err := s.docRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	doc.Name = name
	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document renamed", "id", id, "name", name)
	return doc, nil
}

// MoveDocument moves a document to another folder (nil = root)
func (s *documentService) MoveDocument(ctx context.Context, id string, folderID *string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *folderID); err != nil {
			return nil, err
		}
	}

	doc.FolderID = folderID
	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document moved", "id", id, "folder_id", folderID)
	return doc, nil
}

// TrashDocument soft-deletes a document. The history entry survives so a
// restored document resumes its undo lineage.
func (s *documentService) TrashDocument(ctx context.Context, id string) error {
	if err := s.docRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document trashed", "id", id)
	return nil
}

// RestoreDocument brings a trashed document back
func (s *documentService) RestoreDocument(ctx context.Context, id string) error {
	if err := s.docRepo.Restore(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document restored", "id", id)
	return nil
}

// DeleteDocument permanently deletes a document and discards its history
// entry.
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.store.Discard(ctx, id)

	s.logger.Info("document permanently deleted", "id", id)
	return nil
}

// ListTrash lists soft-deleted documents
func (s *documentService) ListTrash(ctx context.Context) ([]models.Document, error) {
	return s.docRepo.ListTrashed(ctx)
}

// validateCreateRequest validates a document creation request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxDocumentNameLength),
		),
		validation.Field(&req.Kind,
			validation.In("", models.DocumentKindText, models.DocumentKindTable),
		),
	)
}

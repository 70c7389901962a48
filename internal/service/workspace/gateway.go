package workspace

import (
	"context"
	"log/slog"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
)

// gateway implements the ContentGateway interface.
//
// Every content change after document creation flows through
// ApplyContentChange; writing content anywhere else would desynchronize the
// undo stack from the visible document.
type gateway struct {
	docRepo repositories.DocumentRepository
	store   services.HistoryStore
	logger  *slog.Logger
}

// NewContentGateway creates the single content mutation gateway
func NewContentGateway(
	docRepo repositories.DocumentRepository,
	store services.HistoryStore,
	logger *slog.Logger,
) services.ContentGateway {
	return &gateway{
		docRepo: docRepo,
		store:   store,
		logger:  logger,
	}
}

// ApplyContentChange stores newContent, then pushes it onto the document's
// history entry. Order matters: if the write fails nothing is pushed, so the
// operation fully applies or fully no-ops.
func (g *gateway) ApplyContentChange(ctx context.Context, documentID, newContent string) error {
	if err := g.docRepo.SetContent(ctx, documentID, newContent); err != nil {
		return err
	}

	g.store.Push(ctx, documentID, newContent)

	g.logger.Debug("content change applied",
		"document_id", documentID,
		"content_len", len(newContent),
	)
	return nil
}

// Undo moves the history cursor back and writes the resulting snapshot to
// storage without a new history push. When there is nothing to undo the
// document is returned unchanged.
func (g *gateway) Undo(ctx context.Context, documentID string) (*models.Document, error) {
	content, ok := g.store.Undo(ctx, documentID)
	if !ok {
		return g.docRepo.GetByID(ctx, documentID, false)
	}
	return g.applySnapshot(ctx, documentID, content)
}

// Redo moves the history cursor forward and writes the resulting snapshot to
// storage without a new history push. When there is nothing to redo the
// document is returned unchanged.
func (g *gateway) Redo(ctx context.Context, documentID string) (*models.Document, error) {
	content, ok := g.store.Redo(ctx, documentID)
	if !ok {
		return g.docRepo.GetByID(ctx, documentID, false)
	}
	return g.applySnapshot(ctx, documentID, content)
}

func (g *gateway) applySnapshot(ctx context.Context, documentID, content string) (*models.Document, error) {
	if err := g.docRepo.SetContent(ctx, documentID, content); err != nil {
		return nil, err
	}
	return g.docRepo.GetByID(ctx, documentID, false)
}

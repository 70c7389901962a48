package workspace

import (
	"context"
	"log/slog"
	"sync"

	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
)

// defaultPanelSize is the percentage width the auxiliary panel opens at
// when a document becomes active.
const defaultPanelSize = 30

// sessionController implements the SessionController interface.
//
// Activation side effects run as one explicit, deterministic handler instead
// of being scattered across reactive re-renders: clear the AI undo snapshot,
// initialize history for the new document, emit the welcome message, signal
// the layout.
type sessionController struct {
	mu       sync.Mutex
	activeID *string

	docRepo repositories.DocumentRepository
	store   services.HistoryStore
	collab  services.Collaborator
	layout  services.LayoutNotifier
	logger  *slog.Logger
}

// NewSessionController creates a new session controller
func NewSessionController(
	docRepo repositories.DocumentRepository,
	store services.HistoryStore,
	collab services.Collaborator,
	layout services.LayoutNotifier,
	logger *slog.Logger,
) services.SessionController {
	return &sessionController{
		docRepo: docRepo,
		store:   store,
		collab:  collab,
		layout:  layout,
		logger:  logger,
	}
}

// SetActiveDocument switches the active document (nil deactivates)
func (c *sessionController) SetActiveDocument(ctx context.Context, id *string) error {
	return c.activate(ctx, id, false)
}

// ActivateNewDocument is SetActiveDocument for a freshly created document
func (c *sessionController) ActivateNewDocument(ctx context.Context, id string) error {
	return c.activate(ctx, &id, true)
}

// ActiveDocumentID returns the currently active document id, or nil
func (c *sessionController) ActiveDocumentID() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *sessionController) activate(ctx context.Context, id *string, isNew bool) error {
	c.mu.Lock()
	oldID := c.activeID
	if sameID(oldID, id) {
		c.mu.Unlock()
		return nil
	}

	if id == nil {
		c.activeID = nil
		c.mu.Unlock()

		// An AI undo target never crosses documents
		c.collab.OnActiveDocumentChanged(ctx, oldID, nil)

		// History entries persist so reopening resumes the undo lineage
		c.layout.CollapsePanel()
		c.logger.Info("document deactivated")
		return nil
	}
	c.mu.Unlock()

	// Load before committing the switch: a failed load must leave both the
	// session and the coordinator on the old document
	doc, err := c.docRepo.GetByID(ctx, *id, false)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.activeID = id
	c.mu.Unlock()

	c.collab.OnActiveDocumentChanged(ctx, oldID, id)

	c.store.Initialize(ctx, doc.ID, doc.Content)

	if err := c.collab.AddWelcomeMessage(ctx, doc.Name, isNew); err != nil {
		c.logger.Warn("failed to add welcome message", "document_id", doc.ID, "error", err)
	}

	c.layout.ExpandPanel(defaultPanelSize)

	c.logger.Info("document activated", "id", doc.ID, "name", doc.Name, "new", isNew)
	return nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

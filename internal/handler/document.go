package handler

import (
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
	"inkwell/internal/service/tabular"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	gateway    services.ContentGateway
	store      services.HistoryStore
	session    services.SessionController
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	docService services.DocumentService,
	gateway services.ContentGateway,
	store services.HistoryStore,
	session services.SessionController,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		gateway:    gateway,
		store:      store,
		session:    session,
		logger:     logger,
	}
}

// CreateDocument creates a new document and makes it the active one
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	// A freshly created document becomes the active one; a failure here
	// must not lose the created document
	if err := h.session.ActivateNewDocument(r.Context(), doc.ID); err != nil {
		h.logger.Warn("failed to activate created document", "id", doc.ID, "error", err)
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// updateDocumentRequest carries the PATCH fields. folder_id uses RFC 7396
// semantics: absent keeps the folder, null moves the document to the root.
type updateDocumentRequest struct {
	Name     *string                 `json:"name,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// UpdateDocument renames, moves or rewrites a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		if _, err := h.docService.RenameDocument(r.Context(), id, *req.Name); err != nil {
			handleError(w, err)
			return
		}
	}
	if req.FolderID.Present {
		if _, err := h.docService.MoveDocument(r.Context(), id, req.FolderID.Value); err != nil {
			handleError(w, err)
			return
		}
	}
	if req.Content != nil {
		// Content goes through the gateway so the edit lands in history
		if err := h.gateway.ApplyContentChange(r.Context(), id, *req.Content); err != nil {
			handleError(w, err)
			return
		}
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// cellEditRequest is a single tabular cell edit
type cellEditRequest struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// EditCell applies a single cell edit to a tabular document
// PATCH /api/documents/{id}/cells
func (h *DocumentHandler) EditCell(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req cellEditRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	// The cell edit becomes a full replacement of the document content, so
	// it is one undo step like any other edit
	newContent, err := tabular.ApplyCellEdit(doc.Content, req.Row, req.Col, req.Value)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := h.gateway.ApplyContentChange(r.Context(), id, newContent); err != nil {
		handleError(w, err)
		return
	}

	doc, err = h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetGrid returns the tabular projection of a document's content
// GET /api/documents/{id}/grid
func (h *DocumentHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	grid, err := tabular.Parse(doc.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grid)
}

// Undo steps the document's history back and returns the updated document
// POST /api/documents/{id}/undo
func (h *DocumentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.gateway.Undo(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Redo steps the document's history forward and returns the updated document
// POST /api/documents/{id}/redo
func (h *DocumentHandler) Redo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.gateway.Redo(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetHistoryState reports undo/redo availability for a document
// GET /api/documents/{id}/history
func (h *DocumentHandler) GetHistoryState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{
		"can_undo": h.store.CanUndo(r.Context(), id),
		"can_redo": h.store.CanRedo(r.Context(), id),
	})
}

// TrashDocument soft-deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) TrashDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.docService.TrashDocument(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	// Trashing the active document deactivates it
	if active := h.session.ActiveDocumentID(); active != nil && *active == id {
		if err := h.session.SetActiveDocument(r.Context(), nil); err != nil {
			h.logger.Warn("failed to deactivate trashed document", "id", id, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreDocument brings a trashed document back
// POST /api/trash/{id}/restore
func (h *DocumentHandler) RestoreDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.docService.RestoreDocument(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument permanently deletes a trashed document
// DELETE /api/trash/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTrash lists soft-deleted documents
// GET /api/trash
func (h *DocumentHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListTrash(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// HealthCheck is a simple health check endpoint
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}

package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
	"inkwell/internal/service/workspace"
)

// SessionHandler exposes the session state: the active document, the
// auxiliary panel and undo/redo availability.
type SessionHandler struct {
	session services.SessionController
	store   services.HistoryStore
	collab  services.Collaborator
	panel   *workspace.PanelState
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	session services.SessionController,
	store services.HistoryStore,
	collab services.Collaborator,
	panel *workspace.PanelState,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		session: session,
		store:   store,
		collab:  collab,
		panel:   panel,
		logger:  logger,
	}
}

// sessionState is the snapshot the UI shell polls
type sessionState struct {
	ActiveDocumentID *string    `json:"active_document_id"`
	Panel            panelState `json:"panel"`
	CanUndo          bool       `json:"can_undo"`
	CanRedo          bool       `json:"can_redo"`
	Busy             bool       `json:"busy"`
	Collaborating    bool       `json:"collaborating"`
}

type panelState struct {
	Visible bool `json:"visible"`
	Size    int  `json:"size"`
}

// GetSession returns the current session state
// GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	activeID := h.session.ActiveDocumentID()
	visible, size := h.panel.Snapshot()

	state := sessionState{
		ActiveDocumentID: activeID,
		Panel:            panelState{Visible: visible, Size: size},
		Busy:             h.collab.Busy(),
		Collaborating:    h.collab.Collaborating(),
	}
	if activeID != nil {
		state.CanUndo = h.store.CanUndo(r.Context(), *activeID)
		state.CanRedo = h.store.CanRedo(r.Context(), *activeID)
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// setActiveDocumentRequest selects the active document; null deactivates
type setActiveDocumentRequest struct {
	DocumentID *string `json:"document_id"`
}

// SetActiveDocument switches the active document
// PUT /api/session/active-document
func (h *SessionHandler) SetActiveDocument(w http.ResponseWriter, r *http.Request) {
	var req setActiveDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.session.SetActiveDocument(r.Context(), req.DocumentID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

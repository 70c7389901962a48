package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// ChatHandler handles collaboration transcript HTTP requests
type ChatHandler struct {
	collab services.Collaborator
	logger *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(collab services.Collaborator, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		collab: collab,
		logger: logger,
	}
}

// GetTranscript returns the full transcript, sorted by timestamp
// GET /api/chat/messages
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.collab.Transcript(r.Context()))
}

// SendMessage starts a collaboration turn and returns the assistant reply.
// The call blocks for the duration of the backend request; a turn already in
// flight yields 409.
// POST /api/chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.collab.SendMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, reply)
}

// editMessageRequest is the revised text for an existing user message
type editMessageRequest struct {
	Text string `json:"text"`
}

// EditMessage rewrites a user message and regenerates the assistant reply
// PATCH /api/chat/messages/{id}
func (h *ChatHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req editMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.collab.EditAndRegenerate(r.Context(), id, req.Text)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reply)
}

// DeleteMessage removes a single message; unknown ids still return 204
// DELETE /api/chat/messages/{id}
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.collab.DeleteMessage(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UndoAIChange reverts the latest AI-applied document edit, if one is
// pending. Reports whether anything was restored.
// POST /api/chat/undo
func (h *ChatHandler) UndoAIChange(w http.ResponseWriter, r *http.Request) {
	applied, err := h.collab.UndoAIChange(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

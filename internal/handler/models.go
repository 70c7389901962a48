package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/config"
	"inkwell/internal/httputil"
	"inkwell/internal/service/collab/providers"
)

// ModelsHandler exposes the model catalog
type ModelsHandler struct {
	cfg     *config.Config
	catalog *providers.Catalog
	logger  *slog.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config, catalog *providers.Catalog, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger,
	}
}

// ListModels returns the models of the configured provider, marking the
// default
// GET /api/models
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	provider := providers.InferProvider(h.cfg.DefaultModel)
	if provider == "" {
		provider = h.cfg.DefaultProvider
	}

	specs, err := h.catalog.ListModels(provider)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "model catalog unavailable")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"provider":      provider,
		"default_model": h.cfg.DefaultModel,
		"models":        specs,
	})
}

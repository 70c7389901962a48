package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/sqlite"
	"inkwell/internal/service/collab"
	"inkwell/internal/service/collab/providers"
	"inkwell/internal/service/history"
	"inkwell/internal/service/workspace"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	logFile, err := config.SetupLogFile(filepath.Join(cfg.DataDir, "logs"), 10)
	if err != nil {
		log.Printf("warning: file logging disabled: %v", err)
	} else {
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
	)

	// Open the local workspace database
	db, err := sqlite.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open workspace database: %v", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", filepath.Join(cfg.DataDir, "inkwell.db"))

	// Create repositories
	repoConfig := &sqlite.RepositoryConfig{
		DB:     db,
		Logger: logger,
	}
	docRepo := sqlite.NewDocumentRepository(repoConfig)
	folderRepo := sqlite.NewFolderRepository(repoConfig)
	historyRepo := sqlite.NewHistoryRepository(repoConfig)
	transcriptRepo := sqlite.NewTranscriptRepository(repoConfig)

	// History store and the content gateway every edit goes through
	store := history.NewStore(historyRepo, logger)
	gateway := workspace.NewContentGateway(docRepo, store, logger)

	// Initialize model catalog
	catalog, err := providers.NewCatalog()
	if err != nil {
		log.Fatalf("Failed to initialize model catalog: %v", err)
	}

	// Setup assist provider
	provider, err := collab.SetupProvider(cfg, catalog, logger)
	if err != nil {
		log.Fatalf("Failed to setup assist provider: %v", err)
	}

	// Collaboration coordinator and session controller. The coordinator is
	// built first: it observes active-document changes emitted by the
	// session controller.
	ctx := context.Background()
	transcript := collab.NewTranscript(ctx, transcriptRepo, logger)
	coordinator := collab.NewCoordinator(transcript, provider, gateway, docRepo, cfg.DefaultModel, logger)

	panel := workspace.NewPanelState()
	session := workspace.NewSessionController(docRepo, store, coordinator, panel, logger)

	// Workspace services
	docService := workspace.NewDocumentService(docRepo, folderRepo, store, logger)
	folderService := workspace.NewFolderService(folderRepo, docRepo, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, gateway, store, session, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	sessionHandler := handler.NewSessionHandler(session, store, coordinator, panel, logger)
	chatHandler := handler.NewChatHandler(coordinator, logger)
	modelsHandler := handler.NewModelsHandler(cfg, catalog, logger)

	logger.Info("services initialized", "model", cfg.DefaultModel)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.TrashDocument)
	mux.HandleFunc("POST /api/documents/{id}/undo", docHandler.Undo)
	mux.HandleFunc("POST /api/documents/{id}/redo", docHandler.Redo)
	mux.HandleFunc("GET /api/documents/{id}/history", docHandler.GetHistoryState)
	mux.HandleFunc("GET /api/documents/{id}/grid", docHandler.GetGrid)
	mux.HandleFunc("PATCH /api/documents/{id}/cells", docHandler.EditCell)

	// Trash routes
	mux.HandleFunc("GET /api/trash", docHandler.ListTrash)
	mux.HandleFunc("POST /api/trash/{id}/restore", docHandler.RestoreDocument)
	mux.HandleFunc("DELETE /api/trash/{id}", docHandler.DeleteDocument)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/tree", folderHandler.GetTree)

	// Session routes
	mux.HandleFunc("GET /api/session", sessionHandler.GetSession)
	mux.HandleFunc("PUT /api/session/active-document", sessionHandler.SetActiveDocument)

	// Chat routes
	mux.HandleFunc("GET /api/chat/messages", chatHandler.GetTranscript)
	mux.HandleFunc("POST /api/chat/messages", chatHandler.SendMessage)
	mux.HandleFunc("PATCH /api/chat/messages/{id}", chatHandler.EditMessage)
	mux.HandleFunc("DELETE /api/chat/messages/{id}", chatHandler.DeleteMessage)
	mux.HandleFunc("POST /api/chat/undo", chatHandler.UndoAIChange)

	// Model catalog routes
	mux.HandleFunc("GET /api/models", modelsHandler.ListModels)

	// Build middleware chain
	var httpHandler http.Handler = mux
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS wraps everything so OPTIONS pre-flight requests short-circuit
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server. WriteTimeout covers the blocking assist call,
	// which includes one full model round-trip.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/db"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/api"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/api/handlers"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/service"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/logger"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/ollama"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/postgres"

	"go.uber.org/zap"
)

// @title RAG Admission Officer API
// @version 1.0
// @description University admissions Q&A service backed by retrieval-augmented generation.

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.File); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting admission officer service")

	// Apply schema migrations before opening the pool
	if err := db.Migrate(cfg.Database.URL(), appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize database
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Initialize repositories
	qaRepo := repository.NewQARepository(pool, appLogger)
	sessions := repository.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval, appLogger)

	// Initialize services
	ollamaClient := ollama.NewClient(cfg.Ollama.BaseURL())
	embedder := service.NewEmbeddingService(ollamaClient, &cfg.Ollama, appLogger)

	var generator service.Generator
	switch cfg.LLM.Provider {
	case "gigachat":
		gigachat, err := service.NewGigaChatService(&cfg.GigaChat, &cfg.LLM, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize GigaChat client", zap.Error(err))
		}
		defer gigachat.Close()
		generator = gigachat
	default:
		generator = service.NewLLMService(ollamaClient, &cfg.Ollama, &cfg.LLM, appLogger)
	}

	results := service.NewResultLogger(&cfg.Results, appLogger)
	defer results.Close()

	queryService := service.NewQueryService(
		service.NewClassifier(service.DefaultKeywordTable()),
		embedder,
		service.NewRetrievalService(qaRepo, appLogger),
		service.NewPromptBuilder(),
		generator,
		results,
		&cfg.RAG,
		appLogger,
	)

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(queryService, sessions, appLogger)
	sessionHandler := handlers.NewSessionHandler(sessions, appLogger)
	healthHandler := handlers.NewHealthHandler(embedder, pool, sessions, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Server, queryHandler, sessionHandler, healthHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

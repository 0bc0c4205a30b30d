package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/db"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/service"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/logger"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/ollama"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "chat",
		Short:        "Interactive admissions Q&A with conversation memory",
		SilenceUsage: true,
		RunE:         runChat,
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Keep the prompt clean when logs would land on stdout.
	level := cfg.Logger.Level
	if cfg.Logger.File == "" {
		level = "error"
	}
	if err := logger.Init(level, cfg.Logger.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if err := db.Migrate(cfg.Database.URL(), appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	qaRepo := repository.NewQARepository(pool, appLogger)
	ollamaClient := ollama.NewClient(cfg.Ollama.BaseURL())
	embedder := service.NewEmbeddingService(ollamaClient, &cfg.Ollama, appLogger)

	var generator service.Generator
	switch cfg.LLM.Provider {
	case "gigachat":
		gigachat, err := service.NewGigaChatService(&cfg.GigaChat, &cfg.LLM, appLogger)
		if err != nil {
			return fmt.Errorf("failed to initialize GigaChat client: %w", err)
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

	memory := models.NewConversationMemory()

	fmt.Println("RAG query with memory (type 'exit' to quit, 'clear' to reset conversation history)")
	fmt.Printf("Memory window size: %d past interactions\n\n", memory.Cap())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Question> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		switch strings.ToLower(question) {
		case "exit", "quit":
			return scanner.Err()
		case "clear":
			memory.Clear()
			fmt.Print("Conversation history cleared.\n\n")
			continue
		}

		category := queryService.DetectCategory(question)
		if category != "" {
			fmt.Printf("Detected category: %s\n", category)
		}

		result, err := queryService.Ask(ctx, memory, question, category)
		if err != nil {
			if errors.Is(err, service.ErrEmbeddingFailed) ||
				errors.Is(err, service.ErrRetrievalUnavailable) ||
				errors.Is(err, service.ErrGenerationFailed) {
				fmt.Printf("\nPipeline call failed (%v); please retry later.\n\n", err)
				continue
			}
			appLogger.Error("Question failed", zap.Error(err))
			fmt.Printf("\nError: %v\n\n", err)
			continue
		}

		fmt.Printf("\n--- ANSWER ---\n\n%s\n\n---------------\n\n", result.Answer)
		fmt.Printf("[Memory: %d/%d interactions stored]\n\n", result.MemorySize, memory.Cap())
	}

	return scanner.Err()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

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

const embedBatchSize = 32

// corpusEntry mirrors one object in the data.json corpus file.
type corpusEntry struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func main() {
	var (
		jsonPath string
		dryRun   bool
		keep     bool
	)

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Embed the Q&A corpus and load it into PostgreSQL",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(jsonPath, dryRun, keep)
		},
	}
	root.Flags().StringVarP(&jsonPath, "json", "j", "data.json", "Path to JSON file with Q&A data")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "Don't call Ollama or persist; just show counts")
	root.Flags().BoolVar(&keep, "keep", false, "Keep existing entries instead of replacing them")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(jsonPath string, dryRun, keep bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	entries, total, err := loadCorpus(jsonPath, appLogger)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		appLogger.Warn("No Q&A data extracted from corpus", zap.String("path", jsonPath))
		return nil
	}

	appLogger.Info("Prepared Q&A pairs",
		zap.Int("prepared", len(entries)),
		zap.Int("total", total),
		zap.String("path", jsonPath),
	)

	if dryRun {
		sample := entries[0]
		fmt.Println("Dry run enabled - skipping embeddings and DB persistence.")
		fmt.Printf("Prepared %d Q&A pairs from %d entries.\n", len(entries), total)
		fmt.Printf("Sample entry: id=%d category=%q question=%q\n", sample.ID, sample.Category, sample.Question)
		return nil
	}

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
	embedder := service.NewEmbeddingService(ollama.NewClient(cfg.Ollama.BaseURL()), &cfg.Ollama, appLogger)

	appLogger.Info("Embedding Q&A pairs with Ollama",
		zap.Int("count", len(entries)),
		zap.String("model", cfg.Ollama.EmbedModel),
	)

	now := time.Now()
	rows := make([]*models.QAEntry, 0, len(entries))
	for i, entry := range entries {
		text := fmt.Sprintf("Question: %s\nAnswer: %s", entry.Question, entry.Answer)
		embedding, err := embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed entry %d: %w", entry.ID, err)
		}
		rows = append(rows, &models.QAEntry{
			ID:        entry.ID,
			Category:  entry.Category,
			Question:  entry.Question,
			Answer:    entry.Answer,
			Embedding: embedding,
			Source:    "data.json",
			CreatedAt: now,
		})
		if (i+1)%embedBatchSize == 0 {
			appLogger.Info("Embedding progress", zap.Int("done", i+1), zap.Int("total", len(entries)))
		}
	}

	if !keep {
		if err := qaRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear existing entries: %w", err)
		}
		appLogger.Info("Cleared existing Q&A entries")
	}

	created := 0
	for _, row := range rows {
		if err := qaRepo.Create(ctx, row); err != nil {
			appLogger.Error("Failed to insert entry", zap.Int("id", row.ID), zap.Error(err))
			continue
		}
		created++
	}

	count, err := qaRepo.Count(ctx)
	if err != nil {
		appLogger.Warn("Failed to count entries after seeding", zap.Error(err))
		count = created
	}

	appLogger.Info("Seeding completed",
		zap.Int("inserted", created),
		zap.Int("failed", len(rows)-created),
		zap.Int("stored_total", count),
	)
	fmt.Printf("Saved %d Q&A pairs to PostgreSQL\n", created)
	return nil
}

// loadCorpus reads the corpus file and drops entries that carry neither a
// question nor an answer. It returns the usable entries and the raw count.
func loadCorpus(path string, logger *zap.Logger) ([]corpusEntry, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var raw []corpusEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	entries := make([]corpusEntry, 0, len(raw))
	for _, entry := range raw {
		entry.Question = strings.TrimSpace(entry.Question)
		entry.Answer = strings.TrimSpace(entry.Answer)
		if entry.Question == "" && entry.Answer == "" {
			logger.Warn("Skipping empty corpus entry", zap.Int("id", entry.ID))
			continue
		}
		if entry.Category == "" {
			entry.Category = models.CategoryGeneral
		}
		entries = append(entries, entry)
	}
	return entries, len(raw), nil
}

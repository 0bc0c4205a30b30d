package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"

	"go.uber.org/zap"
)

// Pipeline stage failures surfaced to callers. Handlers map these to retry
// responses; the conversation memory is never touched on any of them.
var (
	ErrEmbeddingFailed      = errors.New("embedding failed")
	ErrRetrievalUnavailable = errors.New("knowledge store unavailable")
	ErrGenerationFailed     = errors.New("generation failed")
)

// QueryResult is the outcome of one fully answered question.
type QueryResult struct {
	Question   string
	Category   string
	Answer     string
	Sources    []string
	MemorySize int
	Timestamp  time.Time
}

// QueryService runs a question through the full pipeline: classify, embed,
// retrieve, assemble, generate, sanitize, remember. Each stage must succeed
// before the next runs; the memory is appended to only after the sanitized
// answer exists, so a failed question leaves the conversation as it was.
type QueryService struct {
	classifier *Classifier
	embedder   Embedder
	retriever  Retriever
	builder    *PromptBuilder
	generator  Generator
	results    *ResultLogger
	config     *config.RAGConfig
	logger     *zap.Logger
}

func NewQueryService(
	classifier *Classifier,
	embedder Embedder,
	retriever Retriever,
	builder *PromptBuilder,
	generator Generator,
	results *ResultLogger,
	cfg *config.RAGConfig,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		classifier: classifier,
		embedder:   embedder,
		retriever:  retriever,
		builder:    builder,
		generator:  generator,
		results:    results,
		config:     cfg,
		logger:     logger,
	}
}

// Ask answers one question. A non-empty category bypasses keyword detection;
// a nil memory answers without conversation history and skips the append.
func (s *QueryService) Ask(ctx context.Context, memory *models.ConversationMemory, question, category string) (*QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	if category == "" {
		category = s.classifier.Classify(question)
	}
	if category != "" {
		s.logger.Info("category detected", zap.String("category", category))
	}

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		s.logger.Error("embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	matches, err := s.retriever.Retrieve(ctx, embedding, category, s.config.TopK)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	var turns []models.ConversationTurn
	if memory != nil {
		turns = memory.Snapshot()
	}

	prompt := s.builder.Build(question, matches, turns)

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	answer := SanitizeResponse(raw)
	if answer == "" {
		s.logger.Error("generation produced only markup", zap.Int("raw_length", len(raw)))
		return nil, fmt.Errorf("%w: model returned no usable text", ErrGenerationFailed)
	}

	now := time.Now()
	if memory != nil {
		memory.Append(models.ConversationTurn{
			Question: question,
			Answer:   answer,
			AskedAt:  now,
		})
	}

	sources := matchSources(matches)
	s.results.Save(question, answer, sources, now)

	memorySize := 0
	if memory != nil {
		memorySize = memory.Len()
	}

	s.logger.Info("question answered",
		zap.String("category", category),
		zap.Int("matches", len(matches)),
		zap.Int("memory_size", memorySize),
	)

	return &QueryResult{
		Question:   question,
		Category:   category,
		Answer:     answer,
		Sources:    sources,
		MemorySize: memorySize,
		Timestamp:  now,
	}, nil
}

// Categories exposes the taxonomy for the categories endpoints.
func (s *QueryService) Categories() []string {
	return s.classifier.Categories()
}

// DetectCategory exposes bare classification for the detect endpoint.
func (s *QueryService) DetectCategory(question string) string {
	return s.classifier.Classify(question)
}

// matchSources renders source labels best match first without duplicates.
// Entry ids reach the API response and the result log, never the prompt.
func matchSources(matches []models.RetrievedMatch) []string {
	sources := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		label := fmt.Sprintf("QA#%d (%s)", m.Entry.ID, m.Entry.Category)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		sources = append(sources, label)
	}
	return sources
}

package service

import (
	"context"
	"fmt"
	"math"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/ollama"

	"go.uber.org/zap"
)

// EmbeddingService turns question text into query vectors through the Ollama
// embeddings endpoint.
type EmbeddingService struct {
	client *ollama.Client
	config *config.OllamaConfig
	logger *zap.Logger
}

func NewEmbeddingService(client *ollama.Client, cfg *config.OllamaConfig, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		config: cfg,
		logger: logger,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.EmbedTimeout)
	defer cancel()

	raw, err := s.client.Embeddings(ctx, s.config.EmbedModel, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	s.logger.Debug("embedded text",
		zap.String("model", s.config.EmbedModel),
		zap.Int("dimensions", len(raw)),
	)

	return normalizeVector(raw), nil
}

// normalizeVector narrows the float64 API payload to float32 and scales it to
// unit length, so cosine distance over stored vectors stays well conditioned.
func normalizeVector(raw []float64) []float32 {
	var sum float64
	for _, v := range raw {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v / norm)
	}
	return vec
}

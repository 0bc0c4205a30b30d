package service

import (
	"context"
	"fmt"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/ollama"

	"go.uber.org/zap"
)

// LLMService generates answers through a local Ollama model. It is the
// default Generator; see GigaChatService for the hosted alternative.
type LLMService struct {
	client    *ollama.Client
	ollamaCfg *config.OllamaConfig
	llmCfg    *config.LLMConfig
	logger    *zap.Logger
}

func NewLLMService(client *ollama.Client, ollamaCfg *config.OllamaConfig, llmCfg *config.LLMConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		client:    client,
		ollamaCfg: ollamaCfg,
		llmCfg:    llmCfg,
		logger:    logger,
	}
}

func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ollamaCfg.GenerateTimeout)
	defer cancel()

	answer, err := s.client.Generate(ctx, s.ollamaCfg.LLMModel, prompt, s.llmCfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	s.logger.Debug("generated answer",
		zap.String("model", s.ollamaCfg.LLMModel),
		zap.Int("prompt_length", len(prompt)),
		zap.Int("answer_length", len(answer)),
	)

	return answer, nil
}

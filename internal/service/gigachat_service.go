package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatService generates answers through the hosted GigaChat API. The
// assembled prompt already carries the system instruction, so the model is
// used without one of its own.
type GigaChatService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatService(cfg *config.GigaChatConfig, llmCfg *config.LLMConfig, logger *zap.Logger) (*GigaChatService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = llmCfg.Temperature

	logger.Info("GigaChat generator ready", zap.String("model", cfg.Model))

	return &GigaChatService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (s *GigaChatService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("empty response from LLM")
	}

	return answer, nil
}

func (s *GigaChatService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

package service

import (
	"context"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
)

// Embedder turns a piece of text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorSearcher is the slice of QARepository the retrieval service needs.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int, opts ...repository.SearchOption) ([]models.RetrievedMatch, error)
}

// Retriever finds the nearest corpus entries for a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, embedding []float32, category string, k int) ([]models.RetrievedMatch, error)
}

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"

	"go.uber.org/zap"
)

// RetrievalService finds the corpus entries nearest to a query vector. A
// category narrows the first pass; when that pass comes back short the
// remaining slots are filled from the whole corpus, skipping entries already
// returned.
type RetrievalService struct {
	searcher VectorSearcher
	logger   *zap.Logger
}

func NewRetrievalService(searcher VectorSearcher, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		searcher: searcher,
		logger:   logger,
	}
}

// Retrieve returns up to k matches sorted by descending similarity, ties by
// entry id ascending, with ranks assigned 0..n-1 after the merge. An empty
// category skips the filtered pass.
func (s *RetrievalService) Retrieve(ctx context.Context, embedding []float32, category string, k int) ([]models.RetrievedMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	var matches []models.RetrievedMatch
	if category != "" {
		filtered, err := s.searcher.SearchSimilar(ctx, embedding, k, repository.WithCategory(category))
		if err != nil {
			return nil, fmt.Errorf("failed to search knowledge base: %w", err)
		}
		matches = filtered
	}

	if missing := k - len(matches); missing > 0 {
		if category != "" {
			s.logger.Warn("category search came back short, searching all categories",
				zap.String("category", category),
				zap.Int("found", len(matches)),
			)
		}

		var opts []repository.SearchOption
		if ids := entryIDs(matches); len(ids) > 0 {
			opts = append(opts, repository.WithoutIDs(ids))
		}

		rest, err := s.searcher.SearchSimilar(ctx, embedding, missing, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to search knowledge base: %w", err)
		}
		matches = append(matches, rest...)
	}

	// Both passes come back ordered, but a fallback row can outscore a
	// filtered one, so the merged list is ordered again before ranking.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Entry.ID < matches[j].Entry.ID
	})
	for i := range matches {
		matches[i].Rank = i
	}

	s.logger.Info("retrieval completed",
		zap.String("category", category),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

func entryIDs(matches []models.RetrievedMatch) []int {
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Entry.ID)
	}
	return ids
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

type stubRetriever struct {
	matches  []models.RetrievedMatch
	err      error
	category string
	k        int
	calls    int
}

func (s *stubRetriever) Retrieve(ctx context.Context, embedding []float32, category string, k int) ([]models.RetrievedMatch, error) {
	s.calls++
	s.category = category
	s.k = k
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

type stubGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestQueryService(embedder Embedder, retriever Retriever, generator Generator) *QueryService {
	return NewQueryService(
		NewClassifier(DefaultKeywordTable()),
		embedder,
		retriever,
		NewPromptBuilder(),
		generator,
		NewResultLogger(&config.ResultsConfig{}, zap.NewNop()),
		&config.RAGConfig{TopK: 4},
		zap.NewNop(),
	)
}

func seededMemory(t *testing.T, turns int) *models.ConversationMemory {
	t.Helper()
	memory := models.NewConversationMemory()
	for i := 0; i < turns; i++ {
		memory.Append(models.ConversationTurn{Question: "old question", Answer: "old answer"})
	}
	return memory
}

func TestAskHappyPath(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1, 0.2}}
	retriever := &stubRetriever{matches: []models.RetrievedMatch{
		simMatch(7, "Fees", 0.9),
		simMatch(3, "General", 0.8),
	}}
	generator := &stubGenerator{answer: "Answer: The tuition is 1200 EGP. [SYSTEM]"}
	service := newTestQueryService(embedder, retriever, generator)

	memory := models.NewConversationMemory()
	result, err := service.Ask(context.Background(), memory, "How much is the tuition fee?", "")
	require.NoError(t, err)

	assert.Equal(t, "Fees", result.Category)
	assert.Equal(t, "The tuition is 1200 EGP.", result.Answer)
	assert.Equal(t, []string{"QA#7 (Fees)", "QA#3 (General)"}, result.Sources)
	assert.Equal(t, 1, result.MemorySize)
	assert.False(t, result.Timestamp.IsZero())

	assert.Equal(t, "Fees", retriever.category)
	assert.Equal(t, 4, retriever.k)

	require.Equal(t, 1, memory.Len())
	turn := memory.Snapshot()[0]
	assert.Equal(t, "How much is the tuition fee?", turn.Question)
	assert.Equal(t, "The tuition is 1200 EGP.", turn.Answer)
}

func TestAskCategoryOverrideSkipsDetection(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{answer: "Check your inbox."}
	service := newTestQueryService(embedder, retriever, generator)

	// The question would classify as Fees; the explicit category wins.
	result, err := service.Ask(context.Background(), nil, "How do I pay the fee?", "Emails")
	require.NoError(t, err)

	assert.Equal(t, "Emails", result.Category)
	assert.Equal(t, "Emails", retriever.category)
}

func TestAskUnclassifiedQuestion(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{answer: "Please ask about university matters."}
	service := newTestQueryService(embedder, retriever, generator)

	result, err := service.Ask(context.Background(), nil, "Tell me about the weather", "")
	require.NoError(t, err)

	assert.Equal(t, "", result.Category)
	assert.Equal(t, "", retriever.category)
}

func TestAskNilMemory(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{answer: "September."}
	service := newTestQueryService(embedder, retriever, generator)

	result, err := service.Ask(context.Background(), nil, "When does the semester start?", "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.MemorySize)
	assert.NotContains(t, generator.prompt, "Previous conversation:")
}

func TestAskPromptCarriesHistoryAndQuestion(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{matches: []models.RetrievedMatch{simMatch(1, "Fees", 0.9)}}
	generator := &stubGenerator{answer: "Yes."}
	service := newTestQueryService(embedder, retriever, generator)

	memory := models.NewConversationMemory()
	memory.Append(models.ConversationTurn{Question: "earlier question", Answer: "earlier answer"})

	_, err := service.Ask(context.Background(), memory, "Is there a payment plan?", "")
	require.NoError(t, err)

	assert.Contains(t, generator.prompt, "Previous conversation:")
	assert.Contains(t, generator.prompt, "Student: earlier question")
	assert.Contains(t, generator.prompt, "QUESTION:\nIs there a payment plan?")
	assert.True(t, strings.HasSuffix(generator.prompt, "Answer concisely."))
}

func TestAskCarriesTopMatchIntoPrompt(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{matches: []models.RetrievedMatch{
		{
			Entry: models.QAEntry{
				ID:       12,
				Category: "Fees",
				Question: "What is the tuition cost?",
				Answer:   "$15,000 per year.",
			},
			Similarity: 0.93,
		},
	}}
	generator := &stubGenerator{answer: "$15,000 per year."}
	service := newTestQueryService(embedder, retriever, generator)

	result, err := service.Ask(context.Background(), nil, "How much is the tuition?", "")
	require.NoError(t, err)

	assert.Equal(t, "Fees", result.Category)
	assert.Equal(t, []string{"QA#12 (Fees)"}, result.Sources)
	assert.Contains(t, generator.prompt, "Answer: $15,000 per year.")
	assert.Contains(t, generator.prompt, "QUESTION:\nHow much is the tuition?")
}

func TestAskEmbeddingFailureLeavesMemoryUntouched(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("connection refused")}
	retriever := &stubRetriever{}
	generator := &stubGenerator{}
	service := newTestQueryService(embedder, retriever, generator)

	memory := seededMemory(t, 2)
	_, err := service.Ask(context.Background(), memory, "How much is tuition?", "")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, 0, retriever.calls)
	assert.Equal(t, 0, generator.calls)
}

func TestAskRetrievalFailureLeavesMemoryUntouched(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{err: errors.New("connection refused")}
	generator := &stubGenerator{}
	service := newTestQueryService(embedder, retriever, generator)

	memory := seededMemory(t, 2)
	_, err := service.Ask(context.Background(), memory, "How much is tuition?", "")

	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, 0, generator.calls)
}

func TestAskGenerationFailureLeavesMemoryUntouched(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{err: errors.New("model not loaded")}
	service := newTestQueryService(embedder, retriever, generator)

	memory := seededMemory(t, 2)
	_, err := service.Ask(context.Background(), memory, "How much is tuition?", "")

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 2, memory.Len())
}

func TestAskMarkupOnlyAnswerFailsGeneration(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{answer: "[SYSTEM] <|end|>"}
	service := newTestQueryService(embedder, retriever, generator)

	memory := models.NewConversationMemory()
	_, err := service.Ask(context.Background(), memory, "How much is tuition?", "")

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 0, memory.Len())
}

func TestAskEmptyQuestionRejected(t *testing.T) {
	embedder := &stubEmbedder{}
	service := newTestQueryService(embedder, &stubRetriever{}, &stubGenerator{})

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := service.Ask(context.Background(), nil, question, "")
		assert.Error(t, err)
	}
	assert.Equal(t, 0, embedder.calls)
}

func TestAskTrimsQuestion(t *testing.T) {
	embedder := &stubEmbedder{vec: []float32{0.1}}
	retriever := &stubRetriever{}
	generator := &stubGenerator{answer: "Fine."}
	service := newTestQueryService(embedder, retriever, generator)

	result, err := service.Ask(context.Background(), nil, "  How do I apply?  ", "")
	require.NoError(t, err)
	assert.Equal(t, "How do I apply?", result.Question)
}

func TestMatchSourcesDeduplicates(t *testing.T) {
	sources := matchSources([]models.RetrievedMatch{
		simMatch(7, "Fees", 0.9),
		simMatch(7, "Fees", 0.9),
		simMatch(3, "General", 0.8),
	})
	assert.Equal(t, []string{"QA#7 (Fees)", "QA#3 (General)"}, sources)
}

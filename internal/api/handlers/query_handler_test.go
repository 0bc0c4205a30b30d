package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/dto"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/service"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/pkg/config"
)

type fixedEmbedder struct{ err error }

func (f fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fixedRetriever struct {
	matches []models.RetrievedMatch
	err     error
}

func (f fixedRetriever) Retrieve(ctx context.Context, embedding []float32, category string, k int) ([]models.RetrievedMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

type fixedGenerator struct {
	answer string
	err    error
}

func (f fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type testEnv struct {
	app      *fiber.App
	sessions *repository.SessionRepository
}

func newTestEnv(t *testing.T, generator service.Generator) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	queryService := service.NewQueryService(
		service.NewClassifier(service.DefaultKeywordTable()),
		fixedEmbedder{},
		fixedRetriever{matches: []models.RetrievedMatch{{
			Entry:      models.QAEntry{ID: 7, Category: "Fees", Question: "How much is tuition?", Answer: "1200 EGP per credit hour."},
			Similarity: 0.9,
		}}},
		service.NewPromptBuilder(),
		generator,
		service.NewResultLogger(&config.ResultsConfig{}, logger),
		&config.RAGConfig{TopK: 4},
		logger,
	)

	sessions := repository.NewSessionRepository(time.Hour, time.Hour, logger)

	queryHandler := NewQueryHandler(queryService, sessions, logger)
	sessionHandler := NewSessionHandler(sessions, logger)

	app := fiber.New()
	app.Post("/ask", queryHandler.Ask)
	app.Get("/categories", queryHandler.GetCategories)
	app.Post("/detect-category", queryHandler.DetectCategory)
	app.Post("/clear-memory", sessionHandler.ClearMemory)
	app.Get("/sessions", sessionHandler.ListSessions)
	app.Delete("/sessions/:session_id", sessionHandler.DeleteSession)

	return &testEnv{app: app, sessions: sessions}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getPath(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func TestAskEndpointAnswers(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "Answer: The fee is 1200 EGP."})

	resp := postJSON(t, env.app, "/ask", `{"question":"How much is the tuition fee?","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "The fee is 1200 EGP.", out.Answer)
	assert.Equal(t, "Fees", out.Category)
	assert.Equal(t, []string{"QA#7 (Fees)"}, out.Sources)
	assert.Equal(t, 1, out.MemorySize)
	assert.NotEmpty(t, out.Timestamp)

	// Same session keeps accumulating turns.
	resp = postJSON(t, env.app, "/ask", `{"question":"Is there a payment plan?","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.MemorySize)
}

func TestAskEndpointRejectsEmptyQuestion(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "unused"})

	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`} {
		resp := postJSON(t, env.app, "/ask", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
	assert.Equal(t, 0, env.sessions.Count())
}

func TestAskEndpointRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "unused"})

	resp := postJSON(t, env.app, "/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskEndpointGatewayDownReturns503(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{err: errors.New("model not loaded")})

	resp := postJSON(t, env.app, "/ask", `{"question":"How much is tuition?","session_id":"s1"}`)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["error"], "try again later")

	// The failed question must not be remembered.
	memory, found := env.sessions.Get("s1")
	require.True(t, found)
	assert.Equal(t, 0, memory.Len())
}

func TestAskEndpointMemoryDisabled(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "September."})

	resp := postJSON(t, env.app, "/ask", `{"question":"When does the semester start?","use_memory":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 0, out.MemorySize)
	assert.Equal(t, 0, env.sessions.Count())
}

func TestDetectCategoryEndpoint(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "unused"})

	resp := postJSON(t, env.app, "/detect-category", `{"question":"How do I pay the tuition fee?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.CategoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Fees", out.Detected)
	assert.Len(t, out.Categories, 7)
}

func TestCategoriesEndpoint(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "unused"})

	resp := getPath(t, env.app, "/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.CategoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{
		"Admissions", "Fees", "Academics", "Academic Advising",
		"IT & Systems", "Emails", "General",
	}, out.Categories)
	assert.Empty(t, out.Detected)
}

func TestClearMemoryEndpoint(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "Fine."})

	postJSON(t, env.app, "/ask", `{"question":"How much is tuition?","session_id":"s1"}`)

	resp := postJSON(t, env.app, "/clear-memory", `{"session_id":"s1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "Memory cleared for session: s1", out.Message)

	memory, found := env.sessions.Get("s1")
	require.True(t, found)
	assert.Equal(t, 0, memory.Len())

	resp = postJSON(t, env.app, "/clear-memory", `{"session_id":"missing"}`)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "No memory found for this session", out.Message)
}

func TestSessionEndpoints(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{answer: "Fine."})

	postJSON(t, env.app, "/ask", `{"question":"How much is tuition?","session_id":"a"}`)
	postJSON(t, env.app, "/ask", `{"question":"How do I apply?","session_id":"b"}`)

	resp := getPath(t, env.app, "/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing dto.SessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Equal(t, 2, listing.ActiveSessions)
	require.Len(t, listing.Sessions, 2)
	assert.Equal(t, "a", listing.Sessions[0].SessionID)
	assert.Equal(t, 1, listing.Sessions[0].Interactions)
	assert.Equal(t, models.MemoryWindow, listing.Sessions[0].MaxSize)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/a", nil)
	delResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	var status dto.StatusResponse
	require.NoError(t, json.NewDecoder(delResp.Body).Decode(&status))
	assert.Equal(t, "Session a deleted", status.Message)
	assert.Equal(t, 1, env.sessions.Count())

	delResp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/sessions/a", nil), -1)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(delResp.Body).Decode(&status))
	assert.Equal(t, "Session not found", status.Message)
}

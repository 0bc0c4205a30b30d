package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/dto"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const healthProbeTimeout = 5 * time.Second

type HealthHandler struct {
	embedder service.Embedder
	db       *pgxpool.Pool
	sessions *repository.SessionRepository
	logger   *zap.Logger
}

func NewHealthHandler(embedder service.Embedder, db *pgxpool.Pool, sessions *repository.SessionRepository, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		embedder: embedder,
		db:       db,
		sessions: sessions,
		logger:   logger,
	}
}

// Root godoc
// @Summary Service info
// @Description Returns service status and the endpoint map
// @Tags health
// @Produce json
// @Success 200 {object} dto.ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.ServiceInfoResponse{
		Status:  "online",
		Service: "RAG Admission Officer API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"ask":             "/ask",
			"categories":      "/categories",
			"detect_category": "/detect-category",
			"clear_memory":    "/clear-memory",
			"sessions":        "/sessions",
			"health":          "/health",
		},
	})
}

// Health godoc
// @Summary Health check
// @Description Probes the embedding service and the database
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthProbeTimeout)
	defer cancel()

	ollamaStatus := "connected"
	if _, err := h.embedder.Embed(ctx, "test"); err != nil {
		h.logger.Warn("Health probe: embedding failed", zap.Error(err))
		ollamaStatus = fmt.Sprintf("error: %s", err)
	}

	dbStatus := "connected"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health probe: database ping failed", zap.Error(err))
		dbStatus = fmt.Sprintf("error: %s", err)
	}

	status := "healthy"
	if ollamaStatus != "connected" || dbStatus != "connected" {
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:         status,
		Ollama:         ollamaStatus,
		Database:       dbStatus,
		ActiveSessions: h.sessions.Count(),
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}

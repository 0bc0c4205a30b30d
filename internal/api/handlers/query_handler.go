package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/dto"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

type QueryHandler struct {
	queryService *service.QueryService
	sessions     *repository.SessionRepository
	logger       *zap.Logger
}

func NewQueryHandler(queryService *service.QueryService, sessions *repository.SessionRepository, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		sessions:     sessions,
		logger:       logger,
	}
}

// Ask godoc
// @Summary Ask the admission officer a question
// @Description Answers a question from the admissions knowledge base, keeping per-session conversation memory
// @Tags query
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Question with optional session id, category and memory switch"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ask [post]
func (h *QueryHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question cannot be empty",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	var memory *models.ConversationMemory
	if req.UseMemory == nil || *req.UseMemory {
		memory = h.sessions.GetOrCreate(sessionID)
	}

	result, err := h.queryService.Ask(c.Context(), memory, req.Question, req.Category)
	if err != nil {
		if errors.Is(err, service.ErrEmbeddingFailed) ||
			errors.Is(err, service.ErrRetrievalUnavailable) ||
			errors.Is(err, service.ErrGenerationFailed) {
			h.logger.Error("Pipeline unavailable",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable, please try again later",
			})
		}

		h.logger.Error("Failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal error",
		})
	}

	return c.JSON(dto.AskResponse{
		Answer:     result.Answer,
		Category:   result.Category,
		Sources:    result.Sources,
		Timestamp:  result.Timestamp.Format(time.RFC3339),
		MemorySize: result.MemorySize,
	})
}

// DetectCategory godoc
// @Summary Detect the category of a question
// @Description Runs keyword classification without answering the question
// @Tags query
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Question to classify"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Router /detect-category [post]
func (h *QueryHandler) DetectCategory(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question cannot be empty",
		})
	}

	return c.JSON(dto.CategoryResponse{
		Categories: h.queryService.Categories(),
		Detected:   h.queryService.DetectCategory(req.Question),
	})
}

// GetCategories godoc
// @Summary List question categories
// @Description Returns the category taxonomy used for classification and filtering
// @Tags query
// @Produce json
// @Success 200 {object} dto.CategoryResponse
// @Router /categories [get]
func (h *QueryHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(dto.CategoryResponse{
		Categories: h.queryService.Categories(),
	})
}

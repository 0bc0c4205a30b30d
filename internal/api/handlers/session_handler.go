package handlers

import (
	"fmt"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/dto"
	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *repository.SessionRepository
	logger   *zap.Logger
}

func NewSessionHandler(sessions *repository.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ClearMemory godoc
// @Summary Clear conversation memory for a session
// @Description Empties the memory window but keeps the session alive
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.ClearMemoryRequest true "Session to clear"
// @Success 200 {object} dto.StatusResponse
// @Router /clear-memory [post]
func (h *SessionHandler) ClearMemory(c *fiber.Ctx) error {
	var req dto.ClearMemoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	memory, found := h.sessions.Get(sessionID)
	if !found {
		return c.JSON(dto.StatusResponse{
			Status:  "success",
			Message: "No memory found for this session",
		})
	}

	memory.Clear()
	h.logger.Info("Session memory cleared", zap.String("session_id", sessionID))

	return c.JSON(dto.StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Memory cleared for session: %s", sessionID),
	})
}

// DeleteSession godoc
// @Summary Delete a conversation session
// @Description Removes the session and its memory entirely
// @Tags sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.StatusResponse
// @Router /sessions/{session_id} [delete]
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	if !h.sessions.Delete(sessionID) {
		return c.JSON(dto.StatusResponse{
			Status:  "success",
			Message: "Session not found",
		})
	}

	h.logger.Info("Session deleted", zap.String("session_id", sessionID))

	return c.JSON(dto.StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// ListSessions godoc
// @Summary List active conversation sessions
// @Description Reports each live session with its stored interaction count
// @Tags sessions
// @Produce json
// @Success 200 {object} dto.SessionsResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	active := h.sessions.List()

	sessions := make([]dto.SessionInfo, 0, len(active))
	for _, s := range active {
		sessions = append(sessions, dto.SessionInfo{
			SessionID:    s.ID,
			Interactions: s.Turns,
			MaxSize:      s.Window,
		})
	}

	return c.JSON(dto.SessionsResponse{
		ActiveSessions: len(sessions),
		Sessions:       sessions,
	})
}

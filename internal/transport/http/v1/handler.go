// Package v1 provides HTTP handlers for the assistant API.
package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/chat", h.Chat)
	e.GET("/status/:session_id", h.Status)
	e.GET("/sessions", h.ListSessions)
	e.GET("/sessions/:session_id/history", h.GetHistory)
	e.DELETE("/sessions/:session_id", h.DeleteSession)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": float64(time.Now().UnixNano()) / float64(time.Second),
	})
}

type chatRequest struct {
	Message   string           `json:"message"`
	SessionID string           `json:"session_id"`
	History   []domain.Message `json:"history,omitempty"`
	Role      string           `json:"role,omitempty"`
}

type chatResponse struct {
	Response  string  `json:"response"`
	SessionID string  `json:"session_id"`
	Timestamp float64 `json:"timestamp"`
	Status    string  `json:"status,omitempty"`
}

// Chat accepts a user message and returns the answer, or an accepted
// acknowledgment when processing outlasts the sync window.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.Chat(c.Request().Context(), service.ChatRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		History:   req.History,
		Role:      domain.AdvocacyRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	resp := chatResponse{
		Response:  result.Response,
		SessionID: result.SessionID,
		Timestamp: result.Timestamp,
	}
	if result.Pending {
		resp.Status = string(domain.RequestProcessing)
		return c.JSON(http.StatusAccepted, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Status reports the state of the session's outstanding request. Unknown
// sessions yield a not_found status body, not a 404.
// GET /status/:session_id
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Status(c.Param("session_id")))
}

// ListSessions lists recently active sessions.
// GET /sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.Sessions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetHistory returns the stored conversation for a session.
// GET /sessions/:session_id/history
func (h *Handler) GetHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	history, err := h.service.History(c.Request().Context(), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if history == nil {
		// Unknown sessions read as empty, matching the conversational
		// model where any id names a session that simply has no turns
		// yet.
		history = []domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// DeleteSession clears a session's history. Deleting an unknown session
// succeeds as a no-op.
// DELETE /sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	existed, err := h.service.ClearSession(c.Request().Context(), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"cleared":    existed,
	})
}

package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// AskRequest is the body of POST /v1/sessions/:session_id/messages.
type AskRequest struct {
	Question    string   `json:"question"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// AskResponse is returned after a completed exchange.
type AskResponse struct {
	SessionID  string `json:"session_id"`
	Reply      string `json:"reply"`
	Model      string `json:"model"`
	HistoryLen int    `json:"history_len"`
	LatencyMs  int64  `json:"latency_ms"`
}

// GetSessionMessages lists the turns of a session.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")

	history, ok := h.runner.Store().Lookup(sessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   history.Turns(),
	})
}

// PostSessionMessage asks a question in a session.
// POST /v1/sessions/:session_id/messages
func (h *Handler) PostSessionMessage(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reply, err := h.runner.Handle(c.Request().Context(), conversation.Request{
		SessionID:   sessionID,
		Question:    req.Question,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, AskResponse{
		SessionID:  reply.SessionID,
		Reply:      reply.Content,
		Model:      reply.Model,
		HistoryLen: reply.HistoryLen,
		LatencyMs:  reply.Latency.Milliseconds(),
	})
}

func statusFor(err error) int {
	var mie *domain.ModelInvocationError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &mie) && mie.Timeout():
		return http.StatusGatewayTimeout
	case errors.As(err, &mie):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

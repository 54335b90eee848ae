// Package v1 provides the JSON API used by the chat UI and scripts.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/hub"
)

// Handler handles HTTP requests.
type Handler struct {
	runner *conversation.Runner
	hub    *hub.Hub
	cfg    *config.Config
}

// NewHandler creates a new handler.
func NewHandler(runner *conversation.Runner, h *hub.Hub, cfg *config.Config) *Handler {
	return &Handler{
		runner: runner,
		hub:    h,
		cfg:    cfg,
	}
}

// RegisterRoutes registers API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.POST("/v1/sessions/:session_id/messages", h.PostSessionMessage)
	e.GET("/v1/models", h.ListModels)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"model":       h.cfg.Model,
		"sessions":    h.runner.Store().Len(),
		"connections": h.hub.ConnectionCount(),
	})
}

// ListModels returns the models the UI may offer.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"model":       h.cfg.Model,
		"models":      h.cfg.Models,
		"temperature": h.cfg.Temperature,
	})
}

// Package http provides the HTTP server implementation for the chatbot.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/hub"
	v1 "github.com/ahmad123576/History-Chatbot/internal/transport/http/v1"
	"github.com/ahmad123576/History-Chatbot/internal/transport/ws"
	"github.com/ahmad123576/History-Chatbot/internal/web"
)

// NewServer creates and configures the browser-facing HTTP server.
// It serves the chat page, the WebSocket endpoint and the JSON API.
func NewServer(cfg *config.Config, runner *conversation.Runner, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	wsServer := ws.NewServer(cfg, h, runner)
	v1Handler := v1.NewHandler(runner, h, cfg)

	// Register Routes
	web.RegisterRoutes(e)
	e.GET("/ws", wsServer.HandleWebSocket)
	v1Handler.RegisterRoutes(e)

	return e
}

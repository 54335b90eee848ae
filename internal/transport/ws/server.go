// Package ws provides the WebSocket endpoint used by the browser chat UI.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
	"github.com/ahmad123576/History-Chatbot/internal/hub"
	"github.com/ahmad123576/History-Chatbot/internal/protocol"
)

// Asker runs a single exchange.
type Asker interface {
	Handle(ctx context.Context, req conversation.Request) (*conversation.Reply, error)
}

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	asker    Asker
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, asker Asker) *Server {
	return &Server{
		cfg:   cfg,
		hub:   h,
		asker: asker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case protocol.TypeHello:
		s.handleHello(conn, data)
	case protocol.TypeAsk:
		s.handleAsk(conn, data)
	default:
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleHello binds the connection to a chat session.
func (s *Server) handleHello(conn *hub.Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	s.hub.BindSession(conn, sessionID)

	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHelloAck,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		Model:  s.cfg.Model,
		Models: s.cfg.Models,
	}
	s.hub.SendJSONToConnection(conn, ack)

	log.Printf("Hello handshake completed for session: %s", sessionID)
}

// handleAsk runs an exchange without blocking the read loop and fans the result out
// to every connection on the session.
func (s *Server) handleAsk(conn *hub.Connection, data []byte) {
	var msg protocol.AskMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid ask message")
		return
	}

	sessionID := conn.SessionID()
	if sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	requestID := msg.RequestID
	if requestID == "" {
		requestID = "req_" + uuid.New().String()[:8]
	}

	s.hub.BroadcastJSON(sessionID, protocol.ThinkingMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeThinking,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: sessionID,
		},
		Question: msg.Question,
	})

	go func() {
		reply, err := s.asker.Handle(context.Background(), conversation.Request{
			SessionID:   sessionID,
			Question:    msg.Question,
			Model:       msg.Model,
			Temperature: msg.Temperature,
		})
		if err != nil {
			code := ErrorCode(err)
			if code != protocol.ErrorCodeInvalidInput {
				log.Printf("Exchange failed for session %s: %v", sessionID, err)
			}
			s.sendErrorToSession(sessionID, requestID, code, err.Error())
			return
		}

		s.hub.BroadcastJSON(sessionID, protocol.AnswerMessage{
			BaseMessage: protocol.BaseMessage{
				Type:      protocol.TypeAnswer,
				Ts:        time.Now().UnixMilli(),
				RequestID: requestID,
				SessionID: sessionID,
			},
			Question:   msg.Question,
			Content:    reply.Content,
			Model:      reply.Model,
			HistoryLen: reply.HistoryLen,
		})
	}()
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *hub.Connection, requestID, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: conn.SessionID(),
		},
		Code:    code,
		Message: message,
	}
	s.hub.SendJSONToConnection(conn, errMsg)
}

// sendErrorToSession sends an error message to all connections of a session.
func (s *Server) sendErrorToSession(sessionID, requestID, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: sessionID,
		},
		Code:    code,
		Message: message,
	}
	s.hub.BroadcastJSON(sessionID, errMsg)
}

// NewSessionID allocates a session id for a new chat.
func NewSessionID() string {
	return "sess_" + uuid.New().String()[:8]
}

// ErrorCode maps an exchange error to a protocol error code.
func ErrorCode(err error) string {
	var mie *domain.ModelInvocationError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return protocol.ErrorCodeInvalidInput
	case errors.As(err, &mie) && mie.Timeout():
		return protocol.ErrorCodeModelTimeout
	case errors.As(err, &mie):
		return protocol.ErrorCodeModelError
	default:
		return protocol.ErrorCodeInternalError
	}
}

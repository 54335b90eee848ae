// Package protocol defines the WebSocket message protocol between the chat UI and the server.
package protocol

// Message types from client to server
const (
	TypeHello = "hello"
	TypeAsk   = "ask"
)

// Message types from server to client
const (
	TypeHelloAck = "hello_ack"
	TypeThinking = "thinking"
	TypeAnswer   = "answer"
	TypeError    = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage is sent by the client to bind the connection to a session.
// An empty SessionID asks the server to allocate one.
type HelloMessage struct {
	BaseMessage
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage is sent by the server after a successful hello.
type HelloAckMessage struct {
	BaseMessage
	Model  string   `json:"model"`
	Models []string `json:"models,omitempty"`
}

// AskMessage carries a question from the client.
type AskMessage struct {
	BaseMessage
	Question    string   `json:"question"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ThinkingMessage tells every tab of a session that a question is being answered.
type ThinkingMessage struct {
	BaseMessage
	Question string `json:"question"`
}

// AnswerMessage carries the assistant reply.
type AnswerMessage struct {
	BaseMessage
	Question   string `json:"question"`
	Content    string `json:"content"`
	Model      string `json:"model"`
	HistoryLen int    `json:"history_len"`
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeInvalidInput    = "invalid_input"
	ErrorCodeModelError      = "model_error"
	ErrorCodeModelTimeout    = "model_timeout"
	ErrorCodeInternalError   = "internal_error"
)

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
	"github.com/ahmad123576/History-Chatbot/internal/protocol"
)

// errClientClosed is returned by Ask once the connection is gone.
var errClientClosed = errors.New("connection closed")

// RemoteClient chats through a running server's WebSocket endpoint.
type RemoteClient struct {
	conn      *websocket.Conn
	sessionID string

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan []byte
	readErr error
	closed  bool
	done    chan struct{}
}

// DialRemote connects to addr and binds the connection to sessionID
// (the server allocates one when sessionID is empty). The returned client keeps
// reading in the background so server pings are answered between questions.
func DialRemote(addr, sessionID string) (*RemoteClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c := &RemoteClient{
		conn:    conn,
		pending: make(map[string]chan []byte),
		done:    make(chan struct{}),
	}
	if err := c.sendHello(sessionID); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readMessages()
	return c, nil
}

// SessionID returns the session the server bound this client to.
func (c *RemoteClient) SessionID() string {
	return c.sessionID
}

// Close closes the client connection and waits for the reader to stop.
func (c *RemoteClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// sendHello sends a hello message and waits for hello_ack.
func (c *RemoteClient) sendHello(sessionID string) error {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHello,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		ClientMeta: map[string]string{
			"client": "historybot-cli",
		},
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}

	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != protocol.TypeHelloAck {
		return fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	c.sessionID = base.SessionID
	return nil
}

// readMessages routes answers and errors to the Ask waiting on their request id.
// The default ping handler replies to server pings while this loop runs.
func (c *RemoteClient) readMessages() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			closed := c.closed
			c.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		var base protocol.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}
		if base.Type != protocol.TypeAnswer && base.Type != protocol.TypeError {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[base.RequestID]
		delete(c.pending, base.RequestID)
		c.mu.Unlock()
		if ok {
			// Buffered for exactly one reply.
			ch <- data
		}
	}
}

// Ask sends a question and waits for the matching answer or error.
func (c *RemoteClient) Ask(ctx context.Context, question string) (string, error) {
	requestID := "req_" + uuid.New().String()[:8]
	ch := make(chan []byte, 1)

	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %w", errClientClosed, err)
	}
	c.pending[requestID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	msg := protocol.AskMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeAsk,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: c.sessionID,
		},
		Question: question,
	}
	c.writeMu.Lock()
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("write ask: %w", err)
	}

	var data []byte
	select {
	case data = <-ch:
	case <-c.done:
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %w", errClientClosed, err)
	case <-ctx.Done():
		return "", ctx.Err()
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return "", fmt.Errorf("unmarshal reply: %w", err)
	}
	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		if errMsg.Code == protocol.ErrorCodeInvalidInput {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, errMsg.Message)
		}
		return "", fmt.Errorf("%s: %s", errMsg.Code, errMsg.Message)
	}

	var answer protocol.AnswerMessage
	if err := json.Unmarshal(data, &answer); err != nil {
		return "", fmt.Errorf("unmarshal answer: %w", err)
	}
	return answer.Content, nil
}

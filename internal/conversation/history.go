// Package conversation holds per-session chat histories and runs question/answer exchanges
// against a model client.
package conversation

import (
	"sync"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// History is the ordered, append-only record of turns for one session.
// It is safe for concurrent use.
type History struct {
	sessionID string

	mu    sync.RWMutex
	turns []domain.Turn

	// exchangeMu serializes whole exchanges (assemble, invoke, append) on this session.
	exchangeMu sync.Mutex
}

func newHistory(sessionID string) *History {
	return &History{sessionID: sessionID}
}

// SessionID returns the session this history belongs to.
func (h *History) SessionID() string {
	return h.sessionID
}

// Append adds a turn to the end of the history.
func (h *History) Append(turn domain.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// appendExchange records a user turn and its reply so readers never observe one without the other.
func (h *History) appendExchange(question, reply domain.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, question, reply)
}

// Turns returns a copy of all turns in chronological order.
// Nothing is truncated: every turn ever appended is replayed into later prompts.
func (h *History) Turns() []domain.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Last returns a copy of at most n most recent turns. n <= 0 returns everything.
func (h *History) Last(n int) []domain.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := 0
	if n > 0 && len(h.turns) > n {
		start = len(h.turns) - n
	}
	out := make([]domain.Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

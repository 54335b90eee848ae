package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	h := newHistory("s1")
	h.Append(domain.UserTurn("Who was Akbar?"))
	h.Append(domain.AssistantTurn("A Mughal emperor."))
	h.Append(domain.UserTurn("When did he rule?"))

	turns := h.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.UserTurn("Who was Akbar?"), turns[0])
	assert.Equal(t, domain.AssistantTurn("A Mughal emperor."), turns[1])
	assert.Equal(t, domain.UserTurn("When did he rule?"), turns[2])
	assert.Equal(t, "s1", h.SessionID())
}

func TestHistoryTurnsIsACopy(t *testing.T) {
	h := newHistory("s1")
	h.Append(domain.UserTurn("q"))

	turns := h.Turns()
	turns[0].Content = "changed"

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "q", h.Turns()[0].Content)
}

func TestHistoryLast(t *testing.T) {
	h := newHistory("s1")
	for _, c := range []string{"a", "b", "c", "d"} {
		h.Append(domain.UserTurn(c))
	}

	assert.Len(t, h.Last(0), 4)
	assert.Len(t, h.Last(10), 4)

	last := h.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "c", last[0].Content)
	assert.Equal(t, "d", last[1].Content)
}

func TestHistoryConcurrentAppend(t *testing.T) {
	h := newHistory("s1")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.appendExchange(domain.UserTurn("q"), domain.AssistantTurn("a"))
		}()
	}
	wg.Wait()

	turns := h.Turns()
	require.Len(t, turns, 100)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, domain.RoleUser, turns[i].Role)
		assert.Equal(t, domain.RoleAssistant, turns[i+1].Role)
	}
}

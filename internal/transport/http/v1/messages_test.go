package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
	"github.com/ahmad123576/History-Chatbot/internal/hub"
)

type invokerFunc func(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error) {
	return f(ctx, prompt, temperature)
}

func newTestHandler(t *testing.T, inv conversation.ModelInvoker) (*Handler, *conversation.Store) {
	t.Helper()
	cfg := &config.Config{Model: "gemini-1.5-flash", Models: []string{"gemini-1.5-flash"}, Temperature: 0.7}
	store := conversation.NewStore()
	runner, err := conversation.NewRunner(store, inv, conversation.RunnerConfig{Model: cfg.Model, Temperature: cfg.Temperature, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	return NewHandler(runner, hub.NewHub(), cfg), store
}

func akbar() conversation.ModelInvoker {
	return invokerFunc(func(context.Context, []domain.Turn, float64) (string, error) {
		return "Akbar was a Mughal emperor...", nil
	})
}

func postQuestion(t *testing.T, h *Handler, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/messages", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)

	require.NoError(t, h.PostSessionMessage(c))
	return rec
}

func TestPostSessionMessage(t *testing.T) {
	h, store := newTestHandler(t, akbar())

	rec := postQuestion(t, h, "s1", `{"question":"Who was Akbar?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "Akbar was a Mughal emperor...", resp.Reply)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
	assert.Equal(t, 2, resp.HistoryLen)
	assert.Equal(t, 2, store.GetOrCreate("s1").Len())
}

func TestPostSessionMessageUnknownModel(t *testing.T) {
	h, store := newTestHandler(t, akbar())

	rec := postQuestion(t, h, "s1", `{"question":"Who was Akbar?","model":"gemini-ultra"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available")
	_, ok := store.Lookup("s1")
	assert.False(t, ok)
}

func TestPostSessionMessageEmptyQuestion(t *testing.T) {
	h, store := newTestHandler(t, akbar())

	rec := postQuestion(t, h, "s1", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.GetOrCreate("s1").Len())
}

func TestPostSessionMessageBadTemperature(t *testing.T) {
	h, _ := newTestHandler(t, akbar())

	rec := postQuestion(t, h, "s1", `{"question":"q","temperature":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSessionMessageInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t, akbar())

	rec := postQuestion(t, h, "s1", `{"question":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSessionMessageModelError(t *testing.T) {
	h, store := newTestHandler(t, invokerFunc(func(context.Context, []domain.Turn, float64) (string, error) {
		return "", errors.New("quota exceeded")
	}))

	rec := postQuestion(t, h, "s1", `{"question":"Who was Ashoka?"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "quota exceeded")
	assert.Equal(t, 0, store.GetOrCreate("s1").Len())
}

func TestPostSessionMessageTimeout(t *testing.T) {
	h, _ := newTestHandler(t, invokerFunc(func(ctx context.Context, _ []domain.Turn, _ float64) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))

	rec := postQuestion(t, h, "s1", `{"question":"slow"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGetSessionMessages(t *testing.T) {
	h, _ := newTestHandler(t, akbar())
	postQuestion(t, h, "s1", `{"question":"Who was Akbar?"}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/messages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")

	require.NoError(t, h.GetSessionMessages(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID string        `json:"session_id"`
		Messages  []domain.Turn `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, domain.UserTurn("Who was Akbar?"), resp.Messages[0])
	assert.Equal(t, domain.AssistantTurn("Akbar was a Mughal emperor..."), resp.Messages[1])
}

func TestGetSessionMessagesNotFound(t *testing.T) {
	h, store := newTestHandler(t, akbar())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/missing/messages", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("missing")

	require.NoError(t, h.GetSessionMessages(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestListModelsAndHealth(t *testing.T) {
	h, _ := newTestHandler(t, akbar())
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.ListModels(e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/models", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gemini-1.5-flash"`)

	rec = httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

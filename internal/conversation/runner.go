package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature = 0.7

// ModelInvoker turns an assembled prompt into generated text.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error)
}

// ModelSelector is implemented by invokers that can target another model.
type ModelSelector interface {
	WithModel(model string) ModelInvoker
}

// Exchange describes one completed question/answer pair.
type Exchange struct {
	SessionID   string
	Question    string
	Reply       string
	Model       string
	Temperature float64
	Latency     time.Duration
	CompletedAt time.Time
}

// Observer is notified after an exchange has been recorded in history.
type Observer interface {
	ExchangeCompleted(ctx context.Context, ex Exchange)
}

// RunnerConfig holds the values the runner needs from the application config.
type RunnerConfig struct {
	SystemInstruction string
	Model             string
	// Models lists the models a request may select. Model is always allowed.
	Models      []string
	Temperature float64
	// Timeout bounds each model call. Zero disables the deadline.
	Timeout time.Duration
	// HistoryWindow caps how many past turns are replayed into a prompt. Zero replays all.
	HistoryWindow int
}

// Request is a single question for a session.
type Request struct {
	SessionID string
	Question  string
	// Model selects one of the configured models when set.
	Model string
	// Temperature overrides the configured temperature when set.
	Temperature *float64
}

// Reply is the result of a completed exchange.
type Reply struct {
	SessionID string
	Content   string
	Model     string
	State     domain.ExchangeState
	// HistoryLen is the number of turns in the session after the exchange.
	HistoryLen int
	Latency    time.Duration
}

// Runner orchestrates exchanges: look up history, assemble the prompt, call the model,
// and record both turns on success.
type Runner struct {
	store     *Store
	invoker   ModelInvoker
	cfg       RunnerConfig
	observers []Observer
}

// NewRunner creates a runner. It returns a *domain.ConfigurationError when cfg is unusable.
func NewRunner(store *Store, invoker ModelInvoker, cfg RunnerConfig, observers ...Observer) (*Runner, error) {
	if store == nil {
		return nil, &domain.ConfigurationError{Field: "store", Reason: "is required"}
	}
	if invoker == nil {
		return nil, &domain.ConfigurationError{Field: "invoker", Reason: "is required"}
	}
	if !ValidTemperature(cfg.Temperature) {
		return nil, &domain.ConfigurationError{Field: "temperature", Reason: fmt.Sprintf("%v is outside [0, 1]", cfg.Temperature)}
	}
	if cfg.Timeout < 0 {
		return nil, &domain.ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	if cfg.HistoryWindow < 0 {
		return nil, &domain.ConfigurationError{Field: "history window", Reason: "must not be negative"}
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = DefaultSystemInstruction
	}
	return &Runner{
		store:     store,
		invoker:   invoker,
		cfg:       cfg,
		observers: observers,
	}, nil
}

// Store returns the session store the runner records into.
func (r *Runner) Store() *Store {
	return r.store
}

// Model returns the configured model identifier.
func (r *Runner) Model() string {
	return r.cfg.Model
}

// HandleQuestion asks question on behalf of sessionID using the configured temperature.
func (r *Runner) HandleQuestion(ctx context.Context, sessionID, question string) (string, error) {
	reply, err := r.Handle(ctx, Request{SessionID: sessionID, Question: question})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// Handle runs one exchange. Exchanges on the same session are serialized; different
// sessions proceed in parallel. History is only mutated when the model call succeeds.
func (r *Runner) Handle(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}
	temperature := r.cfg.Temperature
	if req.Temperature != nil {
		if !ValidTemperature(*req.Temperature) {
			return nil, fmt.Errorf("%w: temperature %v is outside [0, 1]", domain.ErrInvalidInput, *req.Temperature)
		}
		temperature = *req.Temperature
	}
	invoker, model, err := r.selectModel(req.Model)
	if err != nil {
		return nil, err
	}

	history := r.store.GetOrCreate(req.SessionID)
	history.exchangeMu.Lock()
	defer history.exchangeMu.Unlock()

	prompt := Assemble(r.cfg.SystemInstruction, r.replayed(history), req.Question)

	callCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	content, err := invoker.Invoke(callCtx, prompt, temperature)
	latency := time.Since(startTime)
	if err != nil {
		if callCtx.Err() != nil && !errors.Is(err, callCtx.Err()) {
			// Some clients report an expired deadline as a plain transport error.
			err = fmt.Errorf("%w: %w", callCtx.Err(), err)
		}
		log.Printf("WARN: exchange failed for session %s after %s (state %s -> %s): %v",
			req.SessionID, latency, domain.ExchangeStateAwaitingModel, domain.ExchangeStateFailed, err)
		return nil, &domain.ModelInvocationError{Model: model, Cause: err}
	}

	history.appendExchange(domain.UserTurn(req.Question), domain.AssistantTurn(content))

	ex := Exchange{
		SessionID:   req.SessionID,
		Question:    req.Question,
		Reply:       content,
		Model:       model,
		Temperature: temperature,
		Latency:     latency,
		CompletedAt: time.Now(),
	}
	for _, o := range r.observers {
		o.ExchangeCompleted(ctx, ex)
	}

	return &Reply{
		SessionID:  req.SessionID,
		Content:    content,
		Model:      model,
		State:      domain.ExchangeStateCompleted,
		HistoryLen: history.Len(),
		Latency:    latency,
	}, nil
}

// replayed returns the turns sent with the next question. A window never starts on an
// assistant turn, so an odd window does not split an exchange.
func (r *Runner) replayed(history *History) []domain.Turn {
	turns := history.Last(r.cfg.HistoryWindow)
	if r.cfg.HistoryWindow == 0 {
		return turns
	}
	for len(turns) > 0 && turns[0].Role == domain.RoleAssistant {
		turns = turns[1:]
	}
	return turns
}

// selectModel resolves the invoker for a requested model. An empty or default model
// uses the configured invoker.
func (r *Runner) selectModel(model string) (ModelInvoker, string, error) {
	if model == "" || model == r.cfg.Model {
		return r.invoker, r.cfg.Model, nil
	}
	if !slices.Contains(r.cfg.Models, model) {
		return nil, "", fmt.Errorf("%w: model %q is not available", domain.ErrInvalidInput, model)
	}
	selector, ok := r.invoker.(ModelSelector)
	if !ok {
		return nil, "", fmt.Errorf("%w: model %q cannot be selected with this provider", domain.ErrInvalidInput, model)
	}
	return selector.WithModel(model), model, nil
}

// ValidTemperature reports whether t is within [0, 1].
func ValidTemperature(t float64) bool {
	return t >= 0 && t <= 1
}

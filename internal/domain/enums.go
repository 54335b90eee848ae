// Package domain defines the core types shared by the chatbot components.
package domain

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ExchangeState is the state of a single question/answer exchange.
type ExchangeState string

const (
	ExchangeStateIdle          ExchangeState = "IDLE"
	ExchangeStatePromptBuilt   ExchangeState = "PROMPT_BUILT"
	ExchangeStateAwaitingModel ExchangeState = "AWAITING_MODEL"
	ExchangeStateCompleted     ExchangeState = "COMPLETED"
	ExchangeStateFailed        ExchangeState = "FAILED"
)

package conversation

import "github.com/ahmad123576/History-Chatbot/internal/domain"

// DefaultSystemInstruction is the persona every prompt starts with.
const DefaultSystemInstruction = "You are a knowledgeable history teacher. You are given a question and you need " +
	"to answer it in a way that is easy to understand and engaging for a 10 year old."

// Prompt is the ordered list of role-tagged messages sent to the model.
type Prompt []domain.Turn

// Assemble builds the final message list: system + history + user question.
// The result never shares a backing array with history.
func Assemble(systemInstruction string, history []domain.Turn, question string) Prompt {
	prompt := make(Prompt, 0, 1+len(history)+1)
	prompt = append(prompt, domain.SystemTurn(systemInstruction))
	prompt = append(prompt, history...)
	prompt = append(prompt, domain.UserTurn(question))
	return prompt
}

// Package conversation tracks the turn history of one chat session.
package conversation

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an append-only record of conversation turns. It carries no
// locking: callers that share a History across goroutines serialize
// access themselves.
type History struct {
	turns []Turn
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records one completed exchange: the user question followed by
// the assistant answer.
func (h *History) Append(question, answer string) {
	h.turns = append(h.turns,
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: answer},
	)
}

// Turns returns a copy of the recorded turns in order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Clear discards all recorded turns.
func (h *History) Clear() {
	h.turns = nil
}

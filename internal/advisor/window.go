package advisor

import "sync"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one question or answer in the conversation window. Questions are
// stored bare, without the injected metrics or system framing, to keep the
// window compact.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Window is the bounded short-term memory of the advisor. Eviction is FIFO
// on insertion order; nothing tracks recency of use. Contents live for the
// process lifetime only.
type Window struct {
	mu       sync.Mutex
	capacity int
	turns    []Turn
}

// NewWindow creates a window holding at most capacity turns. A capacity
// below 1 is coerced to 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{capacity: capacity}
}

// Append adds a turn, evicting the oldest once the window is full.
func (w *Window) Append(t Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, t)
	if len(w.turns) > w.capacity {
		w.turns = w.turns[len(w.turns)-w.capacity:]
	}
}

// Reset empties the window immediately.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}

// Turns returns a copy of the window contents, oldest first.
func (w *Window) Turns() []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

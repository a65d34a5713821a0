package ai

import (
	"sync"

	"github.com/nhle/smartnote/internal/model"
)

// defaultTurns is how many question and answer pairs follow-up questions
// can refer back to.
const defaultTurns = 10

// History is the chat transcript sent with each question. It only grows
// by whole turns, so a question is never replayed without its answer.
type History struct {
	mu       sync.Mutex
	messages []model.ChatMessage
	maxTurns int
	epoch    uint64
}

// NewHistory returns an empty history keeping the last ten turns.
func NewHistory() *History {
	return &History{maxTurns: defaultTurns}
}

// Begin returns a copy of the transcript, oldest first, and the epoch a
// turn built on it must be recorded under.
func (h *History) Begin() ([]model.ChatMessage, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.ChatMessage(nil), h.messages...), h.epoch
}

// AddTurn records a question and its answer, dropping the oldest turn
// once the limit is passed. A turn begun before the last Reset is
// refused and AddTurn reports false.
func (h *History) AddTurn(epoch uint64, question, answer model.ChatMessage) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if epoch != h.epoch {
		return false
	}
	h.messages = append(h.messages, question, answer)
	if over := len(h.messages) - 2*h.maxTurns; over > 0 {
		h.messages = append([]model.ChatMessage(nil), h.messages[over:]...)
	}
	return true
}

// Messages returns a copy of the transcript, oldest first.
func (h *History) Messages() []model.ChatMessage {
	msgs, _ := h.Begin()
	return msgs
}

// Reset forgets the transcript. Turns still in flight are not recorded.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
	h.epoch++
}

// Turns is the number of recorded question and answer pairs.
func (h *History) Turns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages) / 2
}

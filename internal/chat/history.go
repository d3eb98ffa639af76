package chat

import (
	"sync"

	"github.com/eapache/queue"
)

// History is a bounded FIFO of the most recent messages. When full, appending
// evicts the oldest entry. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	entries  *queue.Queue
	capacity int
}

// DefaultHistoryCapacity bounds the replay window for new joiners.
const DefaultHistoryCapacity = 100

// NewHistory creates a history buffer holding at most capacity messages.
// A non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		entries:  queue.New(),
		capacity: capacity,
	}
}

// Append adds a message to the tail, evicting the head when over capacity.
func (h *History) Append(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.entries.Length() >= h.capacity {
		h.entries.Remove()
	}
	h.entries.Add(m)
}

// Snapshot returns an independent copy of the buffer in chronological order.
// Later appends do not mutate a previously returned snapshot.
func (h *History) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, 0, h.entries.Length())
	for i := 0; i < h.entries.Length(); i++ {
		out = append(out, h.entries.Get(i).(Message))
	}
	return out
}

// Len returns the current number of buffered messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries.Length()
}

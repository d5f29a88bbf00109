package notify

import (
	"sync"

	"talentflow/internal/common"
)

// Change is the re-fetch hint broadcast after every committed
// mutation. It deliberately carries no payload beyond the candidate
// id: consumers converge by re-reading authoritative state.
type Change struct {
	CandidateID common.UUID `json:"candidate_id,omitempty"`
	Kind        string      `json:"kind,omitempty"`
}

type Notifier interface {
	Publish(change Change)
}

// Hub fans a Change out to every subscribed connection. Delivery is
// at-most-once and best-effort: a subscriber whose buffer is full
// misses the hint and is expected to converge on its next re-fetch.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Change]struct{})}
}

func (h *Hub) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Publish(change Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

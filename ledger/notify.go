/*
notify.go - Change fan-out for live recomputation

PURPOSE:
  Every successful store write publishes a ChangeEvent. Consumers (the
  dashboard cache, tests) subscribe and recompute derived totals from
  scratch on each event. Recompute-from-scratch keeps correctness simple
  at the record volumes this system sees; nothing here maintains
  incremental state.

DELIVERY:
  Best-effort. A subscriber that cannot keep up has events dropped
  rather than blocking the write path. Subscribers needing a consistent
  view re-read the store, so a dropped event only delays a refresh until
  the next write.
*/
package ledger

import "sync"

// ChangeKind describes what happened to a record.
type ChangeKind string

const (
	ChangeUpserted ChangeKind = "upserted"
	ChangeDeleted  ChangeKind = "deleted"
)

// ChangeEvent identifies a changed record by collection and key.
type ChangeEvent struct {
	Collection string // "workers", "projects", "attendance", "payments", "rates"
	Key        string
	Kind       ChangeKind
}

// Notifier is the subscription capability exposed by stores.
type Notifier interface {
	// Subscribe returns a channel of change events and a cancel func.
	// The channel is closed on cancel.
	Subscribe(buffer int) (<-chan ChangeEvent, func())
}

// Hub is a minimal in-process fan-out. Stores embed one and call Publish
// after each successful write.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ChangeEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan ChangeEvent)}
}

func (h *Hub) Subscribe(buffer int) (<-chan ChangeEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan ChangeEvent, buffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers the event to all subscribers without blocking.
// Events to full subscriber channels are dropped.
func (h *Hub) Publish(ev ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

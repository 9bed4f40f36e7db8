package notify

import (
	"sync"

	"uk.co.dudmesh.tether/internal/model"
)

const subscriberBuffer = 16

// Hub fans engine events out to each user's live connections. Delivery
// is best-effort; a slow subscriber never blocks the engine.
type Hub struct {
	mu   sync.RWMutex
	subs map[model.UserID]map[chan model.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[model.UserID]map[chan model.Event]struct{}{}}
}

// Subscribe registers a live connection; the caller must Unsubscribe
// when it ends.
func (h *Hub) Subscribe(userID model.UserID) chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = map[chan model.Event]struct{}{}
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(userID model.UserID, ch chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[userID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subs, userID)
		}
	}
	close(ch)
}

// Publish delivers to every live connection of the addressee, dropping
// on full buffers.
func (h *Hub) Publish(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Dispatch drains an engine outbox into the hub until it is closed.
func (h *Hub) Dispatch(outbox <-chan model.Event) {
	for event := range outbox {
		h.Publish(event)
	}
}

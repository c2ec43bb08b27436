// Package stream fans out price ticks to websocket subscribers.
package stream

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/chesadev/marketsim/internal/domain"
)

// Hub broadcasts price ticks to an arbitrary number of subscribers.
// Slow subscribers whose channel buffer fills are disconnected rather
// than allowed to block the price writers.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]chan domain.PriceTick
	seq  atomic.Int64
	log  *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		subs: make(map[int64]chan domain.PriceTick),
		log:  log,
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (h *Hub) Subscribe() (int64, <-chan domain.PriceTick) {
	id := h.seq.Add(1)
	ch := make(chan domain.PriceTick, 128)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id int64) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// PublishTick delivers tick to every subscriber without blocking.
// Subscribers with a full channel are dropped.
func (h *Hub) PublishTick(tick domain.PriceTick) {
	var lagging []int64

	h.mu.RLock()
	for id, ch := range h.subs {
		select {
		case ch <- tick:
		default:
			lagging = append(lagging, id)
		}
	}
	h.mu.RUnlock()

	if len(lagging) == 0 {
		return
	}
	h.mu.Lock()
	for _, id := range lagging {
		if ch, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
			h.log.Warn("disconnected lagging price subscriber",
				slog.Int64("subscriber_id", id))
		}
	}
	h.mu.Unlock()
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

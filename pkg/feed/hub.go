// Package feed implements the in-process change-feed: a registry of
// per-conversation subscribers that message inserts are fanned out to.
// Publishing never blocks; a subscriber that cannot drain its buffer is
// disconnected and observes a SubscriptionError. At-least-once delivery
// is preserved by the consumer reconnecting, and replays are safe because
// stream ingestion is idempotent.
package feed

import (
	"sync"

	"github.com/google/uuid"

	"chatfeed/pkg/backend"
	"chatfeed/pkg/logger"
	"chatfeed/pkg/metrics"
	"chatfeed/pkg/models"
)

const defaultBuffer = 64

// Hub manages the open subscriptions of one backend instance.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Sub
	buffer int
	closed bool
}

// NewHub creates a hub. buffer is the per-subscriber channel capacity;
// zero or negative selects the default.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[string]*Sub), buffer: buffer}
}

// Subscribe registers a channel filtered to the conversation key.
func (h *Hub) Subscribe(key models.ConversationKey) *Sub {
	s := &Sub{
		id:  uuid.NewString(),
		key: key,
		ch:  make(chan models.Message, h.buffer),
		hub: h,
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.closing = true
		close(s.ch)
		return s
	}
	h.subs[s.id] = s
	h.mu.Unlock()
	metrics.FeedSubscribers.Inc()
	logger.Debug("feed_subscribed", "sub", s.id, "key", key.String())
	return s
}

// Publish fans a created message out to every matching subscriber.
// Subscribers whose buffer is full are dropped rather than blocking the
// publisher.
func (h *Hub) Publish(m models.Message) {
	h.mu.RLock()
	var slow []*Sub
	for _, s := range h.subs {
		if !s.key.Matches(m) {
			continue
		}
		if s.send(m) {
			metrics.FeedEventsPublished.Inc()
		} else {
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		metrics.FeedEventsDropped.Inc()
		logger.Warn("feed_subscriber_slow", "sub", s.id, "key", s.key.String())
		s.fail(&backend.SubscriptionError{Err: ErrSlowConsumer})
	}
}

// Close tears down every open subscription (server shutdown).
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Sub, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		_ = s.Close()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	_, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		metrics.FeedSubscribers.Dec()
	}
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

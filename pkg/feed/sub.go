package feed

import (
	"errors"
	"sync"

	"chatfeed/pkg/models"
)

// ErrSlowConsumer marks a subscription dropped because its buffer filled.
var ErrSlowConsumer = errors.New("subscriber fell behind the feed")

// Sub is one open feed channel. It implements backend.Subscription.
type Sub struct {
	id  string
	key models.ConversationKey
	ch  chan models.Message
	hub *Hub

	mu      sync.Mutex
	closing bool
	err     error
}

// Events yields message-created notifications until Close or failure.
func (s *Sub) Events() <-chan models.Message { return s.ch }

// Err reports why Events closed; nil after a clean Close.
func (s *Sub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close deregisters the subscription and closes Events. Safe to call
// more than once; events published after Close are not delivered.
func (s *Sub) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	s.hub.remove(s.id)
	close(s.ch)
	return nil
}

// send enqueues without blocking; the closing guard keeps a racing
// Publish from writing to a closed channel.
func (s *Sub) send(m models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return true // dropped silently; subscriber is going away
	}
	select {
	case s.ch <- m:
		return true
	default:
		return false
	}
}

func (s *Sub) fail(err error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.err = err
	s.mu.Unlock()

	s.hub.remove(s.id)
	close(s.ch)
}

package client

import (
	"sync"

	"github.com/gorilla/websocket"

	"chatfeed/pkg/models"
)

// wsSub adapts a websocket feed connection to backend.Subscription.
type wsSub struct {
	conn   *websocket.Conn
	events chan models.Message
	quit   chan struct{} // closed by Close, unblocks a stalled send
	done   chan struct{} // closed when the read loop has exited

	mu     sync.Mutex
	closed bool
	err    error
}

func newWSSub(conn *websocket.Conn) *wsSub {
	s := &wsSub{
		conn:   conn,
		events: make(chan models.Message, 32),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *wsSub) Events() <-chan models.Message { return s.events }

func (s *wsSub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection and waits for the read loop to exit,
// so the events channel is closed before Close returns.
func (s *wsSub) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.quit)
		_ = s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *wsSub) readLoop() {
	defer func() {
		close(s.events)
		close(s.done)
	}()
	for {
		var m models.Message
		if err := s.conn.ReadJSON(&m); err != nil {
			s.mu.Lock()
			// a deliberate Close or a clean server goodbye is not a fault
			if !s.closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.err = err
			}
			s.mu.Unlock()
			_ = s.conn.Close()
			return
		}
		select {
		case s.events <- m:
		case <-s.quit:
			return
		}
	}
}

// Package session drives one open conversation view: a single goroutine
// owns the canonical stream, fed by the one-shot history load and the
// live change feed, and republishes the projected view groups after every
// change. All mutations are serialized on that goroutine, so the stream
// itself needs no locking.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chatfeed/pkg/backend"
	"chatfeed/pkg/logger"
	"chatfeed/pkg/models"
	"chatfeed/pkg/stream"
	"chatfeed/pkg/view"
)

// Options tune a session. The zero value is usable.
type Options struct {
	// OnUpdate is invoked on the session goroutine after every change to
	// the projected groups. Keep it cheap; it blocks ingestion.
	OnUpdate func([]view.Group)
	// Now overrides the clock used for outbound timestamps (tests).
	Now func() time.Time
}

// Session is one open conversation view.
type Session struct {
	be   backend.Backend
	key  models.ConversationKey
	self models.Profile
	sub  backend.Subscription
	now  func() time.Time

	onUpdate func([]view.Group)

	cancel   context.CancelFunc
	loopDone chan struct{}

	loading atomic.Bool
	groups  atomic.Value // []view.Group

	mu  sync.Mutex
	err error
}

// Open subscribes to the conversation's change feed and starts loading
// history in the background. The subscription is opened before the
// history query so no insert can fall between the two; the overlap this
// creates is absorbed by idempotent ingestion. Groups is empty and
// Loading reports true until the initial load settles.
func Open(ctx context.Context, be backend.Backend, key models.ConversationKey, self models.Profile, opts *Options) (*Session, error) {
	if opts == nil {
		opts = &Options{}
	}
	sctx, cancel := context.WithCancel(ctx)

	sub, err := be.Subscribe(sctx, key)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		be:       be,
		key:      key,
		self:     self,
		sub:      sub,
		now:      opts.Now,
		onUpdate: opts.OnUpdate,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.loading.Store(true)
	s.groups.Store([]view.Group{})

	go s.run(sctx)
	return s, nil
}

// run is the per-view event loop; it is the only goroutine touching the
// canonical stream.
func (s *Session) run(ctx context.Context) {
	defer close(s.loopDone)
	// the subscription must not outlive the loop, whichever way it exits;
	// a cancelled ctx is as much a teardown as an explicit Close
	defer func() { _ = s.sub.Close() }()

	st := stream.New(s.key)

	hist, err := s.be.QueryMessages(ctx, s.key)
	if err != nil {
		// failed load leaves the stream empty, never partially populated
		s.setErr(err)
		s.loading.Store(false)
		logger.Error("history_load_failed", "key", s.key.String(), "error", err)
	} else {
		st.IngestBatch(hist)
		s.loading.Store(false)
		s.publish(st)
		logger.Debug("history_loaded", "key", s.key.String(), "count", st.Len())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-s.sub.Events():
			if !ok {
				if err := s.sub.Err(); err != nil {
					// degraded: the view may be missing live updates
					s.setErr(err)
					logger.Warn("feed_closed", "key", s.key.String(), "error", err)
				}
				return
			}
			if st.IngestOne(m) {
				s.publish(st)
			}
		}
	}
}

func (s *Session) publish(st *stream.Stream) {
	groups := view.Project(st.Messages(), s.self.ID)
	s.groups.Store(groups)
	if s.onUpdate != nil {
		s.onUpdate(groups)
	}
}

// Groups returns the current projected view, read-only.
func (s *Session) Groups() []view.Group {
	return s.groups.Load().([]view.Group)
}

// Loading reports whether the initial history fetch is still in flight.
func (s *Session) Loading() bool { return s.loading.Load() }

// Err returns the terminal load error or the degraded-feed error, nil
// while the view is healthy.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Send validates, builds and submits a message. Content empty after
// trimming is declined with backend.ErrEmptyMessage and nothing is
// written. The message is not inserted locally; it becomes visible when
// its echo arrives through the subscription like any other message.
func (s *Session) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return backend.ErrEmptyMessage
	}
	m := models.Message{
		ID:            uuid.NewString(),
		Content:       content,
		CreatedAt:     s.now().UnixNano(),
		Sender:        s.self.ID,
		Group:         s.key.Group,
		SenderProfile: s.self,
	}
	if !s.key.Group {
		m.Recipient = s.peer()
	}
	if err := s.be.InsertMessage(ctx, m); err != nil {
		logger.Error("send_failed", "key", s.key.String(), "error", err)
		return err
	}
	return nil
}

// peer returns the other participant of a direct conversation.
func (s *Session) peer() string {
	if s.key.A == s.self.ID {
		return s.key.B
	}
	return s.key.A
}

// Close synchronously releases the feed subscription and stops the event
// loop. Events delivered after Close are no-ops. Safe to call twice.
func (s *Session) Close() error {
	err := s.sub.Close()
	s.cancel()
	<-s.loopDone
	return err
}

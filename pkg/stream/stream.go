// Package stream owns the canonical in-memory message sequence for one
// open conversation: deduplicated by id, filtered to the conversation key
// and sorted ascending by creation time. Ingestion is idempotent, so the
// at-least-once change feed and the race between the initial fetch and
// live events are both safe to replay.
package stream

import (
	"sort"

	"chatfeed/pkg/models"
)

// Stream is the canonical message collection for one conversation view.
// It is not safe for concurrent use; callers serialize ingestion (the
// session does this with a single event loop per view).
type Stream struct {
	key  models.ConversationKey
	msgs []models.Message
	seen map[string]struct{}
}

// New creates an empty stream scoped to the given conversation.
func New(key models.ConversationKey) *Stream {
	return &Stream{key: key, seen: make(map[string]struct{})}
}

// Key returns the conversation this stream is scoped to.
func (s *Stream) Key() models.ConversationKey { return s.key }

// IngestOne applies a single live event. Events for other conversations
// and duplicate ids are dropped. Returns whether the stream changed.
func (s *Stream) IngestOne(m models.Message) bool {
	if !s.key.Matches(m) {
		return false
	}
	if _, dup := s.seen[m.ID]; dup {
		return false
	}
	s.insert(m)
	return true
}

// IngestBatch applies the initial history load (or any replayed batch).
// Each entry goes through the same dedup/relevance/ordering path as a
// live event. Returns the number of messages applied.
func (s *Stream) IngestBatch(msgs []models.Message) int {
	n := 0
	for _, m := range msgs {
		if s.IngestOne(m) {
			n++
		}
	}
	return n
}

// insert places m keeping ascending CreatedAt order. Among equal
// timestamps the newcomer goes last, preserving arrival order as the
// tiebreak.
func (s *Stream) insert(m models.Message) {
	s.seen[m.ID] = struct{}{}
	i := sort.Search(len(s.msgs), func(i int) bool {
		return s.msgs[i].CreatedAt > m.CreatedAt
	})
	s.msgs = append(s.msgs, models.Message{})
	copy(s.msgs[i+1:], s.msgs[i:])
	s.msgs[i] = m
}

// Len returns the number of messages held.
func (s *Stream) Len() int { return len(s.msgs) }

// Messages returns a copy of the ordered sequence.
func (s *Stream) Messages() []models.Message {
	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Package store is the pebble-backed message log, one of the two Backend
// implementations shipped with chatfeed. Messages are stored under keys
// with a sortable timestamp prefix so a history scan comes back in
// chronological order, and every accepted insert is published to the
// change-feed hub.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"chatfeed/pkg/backend"
	"chatfeed/pkg/feed"
	"chatfeed/pkg/logger"
	"chatfeed/pkg/metrics"
	"chatfeed/pkg/models"
)

// msgPrefix keys the message log: msg:<unix_nano_padded>-<seq>. The seq
// suffix keeps keys unique when inserts share a nanosecond timestamp.
const msgPrefix = "msg:"

// Store owns one pebble database and its change-feed hub. It implements
// backend.Backend and is safe for concurrent use across open views.
type Store struct {
	db  *pebble.DB
	hub *feed.Hub
	seq uint64
}

// Open opens (or creates) a pebble database at path.
func Open(path string, hub *feed.Hub) (*Store, error) {
	logger.Info("opening_pebble_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, err
	}
	if hub == nil {
		hub = feed.NewHub(0)
	}
	return &Store{db: db, hub: hub}, nil
}

// Close closes the feed hub and the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.hub.Close()
	err := s.db.Close()
	s.db = nil
	logger.Info("pebble_closed")
	return err
}

// Ready reports whether the store is opened and usable.
func (s *Store) Ready() bool { return s != nil && s.db != nil }

// InsertMessage appends a message to the log and publishes the created
// event. Missing id and timestamp are filled in, matching what a thin
// client would expect from the backend.
func (s *Store) InsertMessage(ctx context.Context, m models.Message) error {
	if s.db == nil {
		return &backend.WriteError{Err: fmt.Errorf("store is closed")}
	}
	if err := ctx.Err(); err != nil {
		return &backend.WriteError{Err: err}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().UTC().UnixNano()
	}
	m.Sent = true

	data, err := json.Marshal(m)
	if err != nil {
		return &backend.WriteError{Err: fmt.Errorf("marshal message: %w", err)}
	}
	n := atomic.AddUint64(&s.seq, 1)
	key := fmt.Sprintf("%s%020d-%06d", msgPrefix, m.CreatedAt, n)
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		logger.Error("save_message_failed", "key", key, "error", err)
		return &backend.WriteError{Err: err}
	}
	metrics.MessagesInserted.Inc()
	logger.Debug("message_saved", "key", key, "id", m.ID)

	s.hub.Publish(m)
	return nil
}

// QueryMessages scans the log and returns every message matching the
// conversation key, ascending by created_at (the key order).
func (s *Store) QueryMessages(ctx context.Context, key models.ConversationKey) ([]models.Message, error) {
	if s.db == nil {
		return nil, &backend.QueryError{Err: fmt.Errorf("store is closed")}
	}
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, &backend.QueryError{Err: err}
	}
	defer iter.Close()

	prefix := []byte(msgPrefix)
	out := []models.Message{}
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, &backend.QueryError{Err: err}
		}
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("query_invalid_message_json", "key", string(iter.Key()), "error", err)
			continue
		}
		if key.Matches(m) {
			out = append(out, m)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, &backend.QueryError{Err: err}
	}
	logger.Debug("messages_query", "key", key.String(), "count", len(out))
	return out, nil
}

// Subscribe opens a change-feed channel filtered to the key.
func (s *Store) Subscribe(ctx context.Context, key models.ConversationKey) (backend.Subscription, error) {
	if s.db == nil {
		return nil, &backend.SubscriptionError{Err: fmt.Errorf("store is closed")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &backend.SubscriptionError{Err: err}
	}
	return s.hub.Subscribe(key), nil
}

// PruneBefore deletes log entries created before the cutoff (ns) and
// returns how many were removed. Used by the retention sweeper.
func (s *Store) PruneBefore(cutoff int64) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store is closed")
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	prefix := []byte(msgPrefix)
	var doomed [][]byte
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		k := iter.Key()
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		ts, perr := parseKeyTS(k)
		if perr != nil {
			continue
		}
		if ts >= cutoff {
			break // keys ascend by timestamp
		}
		doomed = append(doomed, append([]byte(nil), k...))
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	for _, k := range doomed {
		if err := s.db.Delete(k, pebble.Sync); err != nil {
			return 0, err
		}
	}
	if len(doomed) > 0 {
		logger.Info("messages_pruned", "count", len(doomed), "cutoff", cutoff)
	}
	return len(doomed), nil
}

func parseKeyTS(key []byte) (int64, error) {
	rest := key[len(msgPrefix):]
	i := bytes.IndexByte(rest, '-')
	if i < 0 {
		return 0, fmt.Errorf("malformed message key: %s", key)
	}
	return strconv.ParseInt(string(rest[:i]), 10, 64)
}

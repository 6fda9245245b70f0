package backend

import (
	"context"

	"chatfeed/pkg/models"
)

// Backend is the storage+transport collaborator behind a conversation
// view. Implementations: the in-process pebble store (chatfeed/pkg/store)
// and the remote HTTP client (chatfeed/pkg/client). The connection is the
// only shared resource across open views and is safe for concurrent use.
type Backend interface {
	// QueryMessages returns every stored message matching the key,
	// ascending by created_at. One-shot; callers do not retry.
	QueryMessages(ctx context.Context, key models.ConversationKey) ([]models.Message, error)

	// InsertMessage persists a message and publishes a created event to
	// the change feed. The insert is visible to subscribers, including
	// the author's own subscription (the echo).
	InsertMessage(ctx context.Context, m models.Message) error

	// Subscribe opens a change-feed channel filtered to the key. While
	// open, every matching insert is eventually delivered at least once,
	// in no guaranteed order. Callers must Close the subscription.
	Subscribe(ctx context.Context, key models.ConversationKey) (Subscription, error)
}

// Subscription is one open change-feed channel. Close releases the
// channel deterministically; after Close returns no further events are
// delivered and Events is closed.
type Subscription interface {
	// Events yields message-created notifications. The channel is closed
	// on Close and on transport failure; check Err after it closes.
	Events() <-chan models.Message

	// Err reports why Events closed, or nil after a clean Close.
	Err() error

	Close() error
}

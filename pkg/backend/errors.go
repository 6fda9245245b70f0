package backend

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned by the composer when content is empty after
// trimming. No backend write happens in that case.
var ErrEmptyMessage = errors.New("message content is empty")

// QueryError wraps a failed history query. The view surfaces an error
// state; the canonical stream stays empty rather than partially loaded.
type QueryError struct {
	Key string
	Err error
}

func (e *QueryError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("backend query %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("backend query: %v", e.Err)
}
func (e *QueryError) Unwrap() error { return e.Err }

// WriteError wraps a failed insert. The message was never added locally,
// so there is nothing to roll back.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("backend write: %v", e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// SubscriptionError wraps a change-feed channel that failed to open or
// dropped. The view may be missing live updates; replayed events after a
// transport reconnect are safe because ingestion is idempotent.
type SubscriptionError struct {
	Key string
	Err error
}

func (e *SubscriptionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("subscription %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("subscription: %v", e.Err)
}
func (e *SubscriptionError) Unwrap() error { return e.Err }

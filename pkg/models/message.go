package models

import "time"

// Profile is a denormalized snapshot of a sender's display data, captured
// at send time. It is stored on every message and never re-fetched.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Message is immutable once created; there is no edit or delete.
type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	// CreatedAt is a UTC timestamp (ns). Chronological ordering only;
	// equal timestamps are resolved by arrival order downstream.
	CreatedAt int64  `json:"created_at"`
	Sender    string `json:"sender"`
	// Recipient is empty for group messages.
	Recipient string `json:"recipient,omitempty"`
	// Group selects group routing over 1:1.
	Group         bool    `json:"group,omitempty"`
	SenderProfile Profile `json:"sender_profile"`
	// Sent is the boolean delivery indicator; no receipt protocol beyond it.
	Sent bool `json:"sent,omitempty"`
}

// Created returns the creation timestamp as a UTC time.
func (m Message) Created() time.Time {
	return time.Unix(0, m.CreatedAt).UTC()
}

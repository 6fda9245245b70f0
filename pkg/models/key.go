package models

// ConversationKey identifies one conversation: either the unordered pair of
// participants of a 1:1 chat, or the single shared group channel. A message
// belongs to exactly one conversation, determined by (Group, Sender,
// Recipient).
type ConversationKey struct {
	Group bool
	// A and B are the participant ids of a direct conversation, normalized
	// so that A <= B. Both empty for the group key.
	A, B string
}

// DirectKey builds the key for the 1:1 conversation between two
// participants. Argument order does not matter.
func DirectKey(a, b string) ConversationKey {
	if b < a {
		a, b = b, a
	}
	return ConversationKey{A: a, B: b}
}

// GroupKey returns the key of the shared group channel.
func GroupKey() ConversationKey {
	return ConversationKey{Group: true}
}

// KeyFor derives the conversation a message belongs to.
func KeyFor(m Message) ConversationKey {
	if m.Group {
		return GroupKey()
	}
	return DirectKey(m.Sender, m.Recipient)
}

// Matches reports whether a message belongs to this conversation:
// group key matches any group message; a direct key matches when
// (sender,recipient) equals (A,B) in either orientation.
func (k ConversationKey) Matches(m Message) bool {
	if k.Group {
		return m.Group
	}
	if m.Group {
		return false
	}
	return (m.Sender == k.A && m.Recipient == k.B) ||
		(m.Sender == k.B && m.Recipient == k.A)
}

// String returns a stable identifier usable in logs and filter params.
func (k ConversationKey) String() string {
	if k.Group {
		return "group"
	}
	return "direct:" + k.A + ":" + k.B
}

package validation

import (
	"errors"
	"fmt"
	"strings"

	"chatfeed/pkg/models"
)

// Rules are the configurable limits applied to inbound messages.
type Rules struct {
	// MaxContentLen bounds the content length in bytes, 0 means unbounded.
	MaxContentLen int
}

var rules Rules

func SetRules(r Rules) { rules = r }

// ValidateMessage checks an inbound message before it is accepted for
// storage. Content is judged after whitespace trimming, matching the
// composer's decline rule.
func ValidateMessage(m models.Message) error {
	var errs []string
	if strings.TrimSpace(m.Content) == "" {
		errs = append(errs, "content is required")
	}
	if m.Sender == "" {
		errs = append(errs, "sender is required")
	}
	if !m.Group && m.Recipient == "" {
		errs = append(errs, "recipient is required for direct messages")
	}
	if m.Group && m.Recipient != "" {
		errs = append(errs, "group messages must not carry a recipient")
	}
	if rules.MaxContentLen > 0 && len(m.Content) > rules.MaxContentLen {
		errs = append(errs, fmt.Sprintf("content exceeds max length: %d > %d", len(m.Content), rules.MaxContentLen))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

package validation

import (
	"strings"
	"testing"

	"chatfeed/pkg/models"
)

func TestValidateMessage(t *testing.T) {
	SetRules(Rules{MaxContentLen: 10})
	defer SetRules(Rules{})

	cases := []struct {
		name string
		m    models.Message
		ok   bool
	}{
		{"direct ok", models.Message{Content: "hi", Sender: "a", Recipient: "b"}, true},
		{"group ok", models.Message{Content: "hi", Sender: "a", Group: true}, true},
		{"whitespace content", models.Message{Content: "  \n ", Sender: "a", Recipient: "b"}, false},
		{"missing sender", models.Message{Content: "hi", Recipient: "b"}, false},
		{"direct missing recipient", models.Message{Content: "hi", Sender: "a"}, false},
		{"group with recipient", models.Message{Content: "hi", Sender: "a", Recipient: "b", Group: true}, false},
		{"too long", models.Message{Content: strings.Repeat("x", 11), Sender: "a", Recipient: "b"}, false},
	}
	for _, c := range cases {
		err := ValidateMessage(c.m)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

package retention

import (
	"context"
	"testing"
	"time"

	"chatfeed/pkg/config"
	"chatfeed/pkg/feed"
	"chatfeed/pkg/models"
	"chatfeed/pkg/store"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30d", 30 * 24 * time.Hour, true},
		{"72h", 72 * time.Hour, true},
		{"90m", 90 * time.Minute, true},
		{"", 0, false},
		{"0d", 0, false},
		{"-5h", 0, false},
		{"soon", 0, false},
	}
	for _, c := range cases {
		got, err := ParsePeriod(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParsePeriod(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParsePeriod(%q): expected error", c.in)
		}
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	if _, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Period: "30d", Cron: "not a cron"}, nil); err == nil {
		t.Fatal("invalid cron must be rejected")
	}
	if _, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Period: "never"}, nil); err == nil {
		t.Fatal("invalid period must be rejected")
	}
}

func TestStartDisabledIsNoop(t *testing.T) {
	cancel, err := Start(context.Background(), config.RetentionConfig{}, nil)
	if err != nil {
		t.Fatalf("disabled start: %v", err)
	}
	cancel()
}

func TestRunOncePrunesOldMessages(t *testing.T) {
	st, err := store.Open(t.TempDir()+"/db", feed.NewHub(0))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	old := models.Message{Content: "old", Sender: "a", Recipient: "b",
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour).UnixNano()}
	fresh := models.Message{Content: "fresh", Sender: "a", Recipient: "b",
		CreatedAt: time.Now().UTC().UnixNano()}
	if err := st.InsertMessage(ctx, old); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if err := st.InsertMessage(ctx, fresh); err != nil {
		t.Fatalf("insert fresh: %v", err)
	}

	RunOnce(24*time.Hour, st)

	msgs, err := st.QueryMessages(ctx, models.DirectKey("a", "b"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "fresh" {
		t.Fatalf("after prune = %+v, want only the fresh message", msgs)
	}
}

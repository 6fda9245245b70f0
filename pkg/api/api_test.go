package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chatfeed/pkg/feed"
	"chatfeed/pkg/models"
	"chatfeed/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir()+"/db", feed.NewHub(8))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ts := httptest.NewServer(New(st).Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func postMessage(t *testing.T, ts *httptest.Server, m models.Message) *http.Response {
	t.Helper()
	b, _ := json.Marshal(m)
	resp, err := http.Post(ts.URL+"/v1/messages", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

type listResponse struct {
	Key      string           `json:"key"`
	Messages []models.Message `json:"messages"`
}

func TestCreateAndListDirect(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postMessage(t, ts, models.Message{Content: "hi", Sender: "alice", Recipient: "bob"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/v1/messages?a=bob&b=alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Messages) != 1 || out.Messages[0].Content != "hi" {
		t.Fatalf("list = %+v, want single message", out.Messages)
	}
	if out.Messages[0].ID == "" || out.Messages[0].CreatedAt == 0 {
		t.Fatal("server must fill id and timestamp")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postMessage(t, ts, models.Message{Content: "   ", Sender: "alice", Recipient: "bob"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("whitespace content: status = %d, want 400", resp.StatusCode)
	}

	resp = postMessage(t, ts, models.Message{Content: "hi", Sender: "alice"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing recipient: status = %d, want 400", resp.StatusCode)
	}
}

func TestListRequiresKey(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/messages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFeedStreamsInserts(t *testing.T) {
	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/feed?group=true"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp := postMessage(t, ts, models.Message{Content: "hello room", Sender: "alice", Group: true})
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m models.Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Content != "hello room" || !m.Group {
		t.Fatalf("feed event = %+v", m)
	}
}

func TestFeedFiltersByKey(t *testing.T) {
	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/feed?a=alice&b=bob"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// a group message must not reach a direct subscription
	resp := postMessage(t, ts, models.Message{Content: "room", Sender: "alice", Group: true})
	resp.Body.Close()
	resp = postMessage(t, ts, models.Message{Content: "direct", Sender: "bob", Recipient: "alice"})
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m models.Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Content != "direct" {
		t.Fatalf("first feed event = %q, want %q", m.Content, "direct")
	}
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
	}
}

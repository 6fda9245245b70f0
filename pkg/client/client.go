// Package client is a remote implementation of backend.Backend: history
// and inserts go over HTTP, the live feed over a websocket. It lets a
// view session run against a chatfeed server exactly as it runs against
// an in-process store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"chatfeed/pkg/backend"
	"chatfeed/pkg/models"
)

// Client talks to a chatfeed server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	dialer  *websocket.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the key sent as a bearer token on HTTP requests and
// as an api_key query param on the feed dial.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func keyParams(key models.ConversationKey) url.Values {
	v := url.Values{}
	if key.Group {
		v.Set("group", "true")
	} else {
		v.Set("a", key.A)
		v.Set("b", key.B)
	}
	return v
}

func (c *Client) QueryMessages(ctx context.Context, key models.ConversationKey) ([]models.Message, error) {
	u := c.baseURL + "/v1/messages?" + keyParams(key).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &backend.QueryError{Key: key.String(), Err: err}
	}
	c.setAuth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &backend.QueryError{Key: key.String(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &backend.QueryError{Key: key.String(), Err: httpError(resp)}
	}
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &backend.QueryError{Key: key.String(), Err: err}
	}
	return out.Messages, nil
}

func (c *Client) InsertMessage(ctx context.Context, m models.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return &backend.WriteError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(b))
	if err != nil {
		return &backend.WriteError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return &backend.WriteError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return &backend.WriteError{Err: httpError(resp)}
	}
	return nil
}

// Subscribe dials the websocket feed. The returned subscription closes
// its channel when the connection drops; Err reports why.
func (c *Client) Subscribe(ctx context.Context, key models.ConversationKey) (backend.Subscription, error) {
	params := keyParams(key)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	u := wsScheme(c.baseURL) + "/v1/feed?" + params.Encode()
	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, &backend.SubscriptionError{Key: key.String(), Err: err}
	}

	return newWSSub(conn), nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("server: %s (status %d)", e.Error, resp.StatusCode)
	}
	return fmt.Errorf("server: status %d", resp.StatusCode)
}

func wsScheme(base string) string {
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://")
	}
	return "ws://" + strings.TrimPrefix(base, "http://")
}

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chatfeed/pkg/logger"
	"chatfeed/pkg/utils"
)

var errBadKey = errors.New("missing conversation key: pass group=true or a and b")

const (
	// Time allowed to write a message to the peer.
	writeWait = 3 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 20 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 25 * time.Second

	readLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy is enforced by the auth middleware in front of the
	// router; the upgrader accepts what got this far.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feed streams conversation inserts over a websocket. Filtering is
// server side: only messages matching the requested key are sent.
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := s.store.Subscribe(r.Context(), key)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = sub.Close()
		logger.Warn("feed_upgrade_failed", "error", err)
		return
	}
	logger.Info("feed_opened", "key", key.String(), "remote", r.RemoteAddr)

	// reader goroutine: we expect no data frames, only pongs and close
	go func() {
		conn.SetReadLimit(readLimit)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = sub.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.Close()
		_ = conn.Close()
		logger.Info("feed_closed", "key", key.String(), "remote", r.RemoteAddr)
	}()

	for {
		select {
		case m, ok := <-sub.Events():
			if !ok {
				// closed by the hub; tell the peer why if it was a fault
				code := websocket.CloseNormalClosure
				reason := ""
				if err := sub.Err(); err != nil {
					code = websocket.CloseGoingAway
					reason = err.Error()
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(code, reason))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Package api exposes the conversation store over HTTP: message create
// and list endpoints plus a websocket change feed, all keyed by
// conversation (group, or an unordered participant pair).
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chatfeed/pkg/backend"
	"chatfeed/pkg/logger"
	"chatfeed/pkg/models"
	"chatfeed/pkg/utils"
	"chatfeed/pkg/validation"
)

// Store is the server-side persistence the API serves. It is the
// backend interface plus a readiness probe.
type Store interface {
	backend.Backend
	Ready() bool
}

// Server wires the HTTP surface to a store.
type Server struct {
	store Store
}

func New(store Store) *Server { return &Server{store: store} }

// Router builds the route table. Auth middleware is layered on by the
// caller so tests can hit handlers directly.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.ready).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/messages", s.createMessage).Methods(http.MethodPost)
	v1.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	v1.HandleFunc("/feed", s.feed).Methods(http.MethodGet)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if !s.store.Ready() {
		utils.JSONError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	var m models.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateMessage(m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.InsertMessage(r.Context(), m); err != nil {
		logger.Error("message_create_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("message_created", "sender", m.Sender, "group", m.Group)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, err := s.store.QueryMessages(r.Context(), key)
	if err != nil {
		logger.Error("messages_list_failed", "key", key.String(), "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Debug("messages_list", "key", key.String(), "count", len(msgs))
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Key      string           `json:"key"`
		Messages []models.Message `json:"messages"`
	}{Key: key.String(), Messages: msgs})
}

// keyFromQuery derives the conversation key from query params:
// group=true for the group room, or a=<id>&b=<id> for a direct pair.
func keyFromQuery(r *http.Request) (models.ConversationKey, error) {
	q := r.URL.Query()
	if q.Get("group") == "true" {
		return models.GroupKey(), nil
	}
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		return models.ConversationKey{}, errBadKey
	}
	return models.DirectKey(a, b), nil
}

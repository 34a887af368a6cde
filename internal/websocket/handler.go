package websocket

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: limit your cors, don't get true so easy in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler accepts socket connections. Identity is asserted upstream (the web
// layer terminates the session); the connect signal carries the user id and
// an optional last-known room id for the reconnect path.
type Handler struct {
	Sink           EventSink
	MaxConnections int64

	active atomic.Int64
}

func NewHandler(sink EventSink) *Handler {
	return &Handler{
		Sink:           sink,
		MaxConnections: 10000,
	}
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	// Room hint from the last session; 0 means a fresh, unattached connect.
	roomIDHint, _ := strconv.ParseInt(r.URL.Query().Get("room_id"), 10, 64)

	if h.active.Load() >= h.MaxConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws: upgrade failed")
		return
	}

	h.active.Add(1)
	client := NewWSClient(conn, userID, &countingSink{inner: h.Sink, active: &h.active})

	client.Run()
	h.Sink.Connected(client.ctx, client, roomIDHint)
}

func (h *Handler) ActiveConnections() int64 {
	return h.active.Load()
}

// countingSink decrements the connection counter exactly once per client.
type countingSink struct {
	inner  EventSink
	active *atomic.Int64
}

func (s *countingSink) Connected(ctx context.Context, client Client, roomIDHint int64) {
	s.inner.Connected(ctx, client, roomIDHint)
}

func (s *countingSink) Event(ctx context.Context, client Client, raw []byte) {
	s.inner.Event(ctx, client, raw)
}

func (s *countingSink) Disconnected(ctx context.Context, client Client) {
	s.active.Add(-1)
	s.inner.Disconnected(ctx, client)
}

package websocket

import "context"

// Client abstracts one live connection so the hub and orchestrator never
// touch the underlying transport; tests swap in mock clients.
type Client interface {
	// ConnID identifies this connection instance (a user may reconnect and
	// get a fresh one).
	ConnID() string
	UserID() string

	// Send enqueues an already-encoded frame. It must not block; false means
	// the client's buffer is full and the frame was dropped.
	Send(data []byte) bool

	Close()
}

// EventSink receives connection lifecycle and inbound events. Implemented by
// the ws handler layer, which dispatches into the chat orchestrator.
type EventSink interface {
	Connected(ctx context.Context, client Client, roomIDHint int64)
	Event(ctx context.Context, client Client, raw []byte)
	Disconnected(ctx context.Context, client Client)
}

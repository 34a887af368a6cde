package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MB
	sendBufferSize = 256
)

// WSClient is the gorilla-backed Client. The read pump hands raw frames to
// the EventSink; the write pump drains the send buffer and keeps the
// connection alive with pings.
type WSClient struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	sink      EventSink
	closeOnce sync.Once
}

func NewWSClient(conn *websocket.Conn, userID string, sink EventSink) *WSClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &WSClient{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
		sink:   sink,
	}
}

func (c *WSClient) ConnID() string {
	return c.id
}

func (c *WSClient) UserID() string {
	return c.userID
}

func (c *WSClient) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	default:
		return false
	}
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

// Run starts both pumps; it returns immediately.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		c.Close()
		c.sink.Disconnected(context.Background(), c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connID", c.id).Str("userID", c.userID).Msg("ws: unexpected close")
			}
			return
		}

		c.sink.Event(c.ctx, c, raw)
	}
}

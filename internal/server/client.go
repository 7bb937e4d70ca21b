package server

import (
	"encoding/json"
	"sync"
	"time"

	"war-game/internal/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait bounds a single write, so a peer that stops reading is dropped.
const writeWait = 10 * time.Second

// Client represents a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	ID   string

	done      chan struct{} // closed once the hub drops the client
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		ID:   id,
		done: make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// deliver queues message, waiting while the buffer is full. It returns false
// once the client is gone.
func (c *Client) deliver(message []byte) bool {
	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	}
}

// ReadPump handles incoming messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	logger := c.hub.logger.With(zap.String("client_id", c.ID))
	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected close", zap.Error(err))
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			logger.Warn("malformed message", zap.Error(err))
			c.hub.sendErrorToClient(c, "Malformed message.")
			continue
		}

		if msg.Type != protocol.TypePing {
			logger.Debug("message received", zap.String("type", msg.Type))
		}
		select {
		case c.hub.processMessage <- clientMessage{client: c, message: msg}:
		case <-c.done:
			return
		}
	}
}

// WritePump handles outgoing messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn("write failed", zap.String("client_id", c.ID), zap.Error(err))
				c.hub.drop(c)
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

package websocket

import (
	"time"

	"econote-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBuffer = 256
)

// Client is a middleman between a websocket connection and whoever produces its messages.
type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	logger logger.ILogger
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, log logger.ILogger) *Client {
	return &Client{Conn: conn, UserID: userID, Send: make(chan []byte, sendBuffer), logger: log}
}

// TrySend queues a message without blocking; false means the buffer is full.
func (c *Client) TrySend(msg []byte) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump reads frames until the connection fails or onMessage returns an error,
// handing each frame to onMessage. It keeps the read deadline alive with pongs.
func (c *Client) ReadPump(onMessage func(messageType int, data []byte) error) {
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID.String(),
					"error":   err.Error(),
				})
			}
			return
		}
		if onMessage == nil {
			continue
		}
		if err := onMessage(mt, data); err != nil {
			return
		}
	}
}

// WritePump writes queued messages, one text frame each, and pings the peer.
// It returns when Send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the owner.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("WebSocket", "Ping failed", map[string]interface{}{"user_id": c.UserID.String(), "error": err.Error()})
				return
			}
		}
	}
}

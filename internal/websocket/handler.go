package websocket

import (
	"econote-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers a notification socket with the hub and blocks until it disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, log logger.ILogger) {
	client := NewClient(c, userID, log)
	hub.Register(client)

	go client.WritePump()
	client.ReadPump(nil)
	hub.Unregister(client)
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// NotificationPayload is the toast pushed to a user's notification sockets.
type NotificationPayload struct {
	Id        uuid.UUID `json:"id"`
	Level     string    `json:"level"` // success | error
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// EventPayload relays a domain event to the sockets of its owner.
type EventPayload struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

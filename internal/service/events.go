package service

import (
	"context"

	"econote-be/internal/pkg/logger"
	"econote-be/pkg/events"
)

// publishEvent sends a domain event; a failing bus never fails the operation that produced it.
func publishEvent(ctx context.Context, publisher events.Publisher, log logger.ILogger, module string, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

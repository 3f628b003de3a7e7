package service

import (
	"context"
	"fmt"
	"time"

	"econote-be/internal/dto"
	"econote-be/internal/pkg/logger"
	"econote-be/pkg/events"
	pktNats "econote-be/pkg/nats"

	"github.com/google/uuid"
)

const (
	MessageTypeNotification = "notification"
	MessageTypeEvent        = "event"

	relayDurable = "econote-notification-relay"
)

// NotificationDelivery pushes messages to a user's sockets. Implemented by the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, msgType string, data interface{})
}

type INotificationService interface {
	// Notify shows a toast to every open tab of the user.
	Notify(ctx context.Context, userId uuid.UUID, level, action, message string)
	// Report notifies success or failure of a user action and returns err unchanged.
	Report(ctx context.Context, userId uuid.UUID, action, success string, err error) error
	// Start relays domain events from the bus to their owners until ctx is done.
	Start(ctx context.Context) error
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *NotificationService) Notify(_ context.Context, userId uuid.UUID, level, action, message string) {
	if s.delivery == nil || userId == uuid.Nil {
		return
	}
	s.delivery.Send(userId, MessageTypeNotification, dto.NotificationPayload{
		Id:        uuid.New(),
		Level:     level,
		Action:    action,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) Report(ctx context.Context, userId uuid.UUID, action, success string, err error) error {
	if err != nil {
		s.Notify(ctx, userId, dto.NotificationError, action, err.Error())
		return err
	}
	s.Notify(ctx, userId, dto.NotificationSuccess, action, success)
	return nil
}

func (s *NotificationService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event bus configured, event relay disabled", nil)
		return nil
	}
	subject := pktNats.SubjectPrefix + ".>"
	if err := s.subscriber.Subscribe(ctx, subject, relayDurable, s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", fmt.Sprintf("Relaying events from %s", subject), nil)
	return nil
}

func (s *NotificationService) handleEvent(_ context.Context, event events.Event) error {
	userId, err := uuid.Parse(events.UserID(event))
	if err != nil {
		s.logger.Warn("NotificationService", "Event without owner, skipped", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	if s.delivery != nil {
		s.delivery.Send(userId, MessageTypeEvent, dto.EventPayload{
			Type:       event.EventType(),
			Data:       event.Payload(),
			OccurredAt: event.Timestamp(),
		})
	}
	return nil
}

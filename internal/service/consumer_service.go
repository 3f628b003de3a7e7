package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"econote-be/internal/dto"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/events"
	"econote-be/pkg/ocr"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	actionOcr          = "ocr"
	maxOcrAttempts     = 3
	ocrRecognizeBudget = 2 * time.Minute
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type ConsumerOptions struct {
	CanvasWidth  int
	CanvasHeight int
	GridSpacing  int
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	gateway    contract.PersistenceGateway
	engine     ocr.Engine
	events     events.Publisher
	notifier   INotificationService
	logger     logger.ILogger
	opts       ConsumerOptions

	// Redelivered messages keep their UUID, so attempts are counted per UUID.
	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	gateway contract.PersistenceGateway,
	engine ocr.Engine,
	publisher events.Publisher,
	notifier INotificationService,
	log logger.ILogger,
	opts ConsumerOptions,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		gateway:    gateway,
		engine:     engine,
		events:     publisher,
		notifier:   notifier,
		logger:     log,
		opts:       opts,
		attempts:   make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.OcrPageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("OcrConsumer", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	fields := map[string]interface{}{
		"message_id": msg.UUID,
		"page_id":    payload.PageId.String(),
		"language":   payload.Language,
	}
	cs.logger.Info("OcrConsumer", "Processing page", fields)

	page, err := cs.gateway.GetPage(ctx, payload.PageId)
	if err != nil {
		cs.retry(ctx, msg, payload, err)
		return
	}
	if page == nil || page.UserId != payload.UserId {
		cs.logger.Warn("OcrConsumer", "Page no longer exists", fields)
		cs.done(msg)
		return
	}

	img, err := pageImage(page, renderOptions(cs.opts.CanvasWidth, cs.opts.CanvasHeight, cs.opts.GridSpacing))
	if err != nil {
		cs.fail(ctx, msg, payload, err)
		return
	}

	recognizeCtx, cancel := context.WithTimeout(ctx, ocrRecognizeBudget)
	result, err := cs.engine.Recognize(recognizeCtx, img, payload.Language)
	cancel()
	if err != nil {
		if errors.Is(err, ocr.ErrNotConfigured) {
			cs.fail(ctx, msg, payload, err)
			return
		}
		cs.retry(ctx, msg, payload, err)
		return
	}

	// Re-read so strokes flushed while recognition ran are not overwritten.
	latest, err := cs.gateway.GetPage(ctx, payload.PageId)
	if err != nil {
		cs.retry(ctx, msg, payload, err)
		return
	}
	if latest == nil {
		cs.done(msg)
		return
	}
	now := time.Now()
	text := result.Text
	language := payload.Language
	latest.OcrText = &text
	latest.OcrLanguage = &language
	latest.UpdatedAt = &now
	if err := cs.gateway.SavePage(ctx, latest); err != nil {
		cs.retry(ctx, msg, payload, err)
		return
	}

	publishEvent(ctx, cs.events, cs.logger, "OcrConsumer", events.NewOcrCompleted(payload.UserId, payload.PageId, language, result.Confidence))
	cs.notifier.Notify(ctx, payload.UserId, dto.NotificationSuccess, actionOcr,
		fmt.Sprintf("Text recognized on %q", latest.Title))

	fields["characters"] = len(text)
	fields["confidence"] = result.Confidence
	cs.logger.Info("OcrConsumer", "Page recognized", fields)
	cs.done(msg)
}

// retry nacks a transient failure until the attempt budget is spent.
func (cs *consumerService) retry(ctx context.Context, msg *message.Message, payload dto.OcrPageMessage, err error) {
	cs.mu.Lock()
	cs.attempts[msg.UUID]++
	n := cs.attempts[msg.UUID]
	cs.mu.Unlock()

	if n >= maxOcrAttempts {
		cs.fail(ctx, msg, payload, fmt.Errorf("giving up after %d attempts: %w", n, err))
		return
	}
	cs.logger.Warn("OcrConsumer", "Transient failure, message will be redelivered", map[string]interface{}{
		"message_id": msg.UUID,
		"attempt":    n,
		"error":      err.Error(),
	})
	msg.Nack()
}

func (cs *consumerService) fail(ctx context.Context, msg *message.Message, payload dto.OcrPageMessage, err error) {
	cs.logger.Error("OcrConsumer", "OCR failed", map[string]interface{}{
		"message_id": msg.UUID,
		"page_id":    payload.PageId.String(),
		"error":      err.Error(),
	})
	cs.notifier.Notify(ctx, payload.UserId, dto.NotificationError, actionOcr, "Text recognition failed: "+err.Error())
	cs.done(msg)
}

func (cs *consumerService) done(msg *message.Message) {
	cs.mu.Lock()
	delete(cs.attempts, msg.UUID)
	cs.mu.Unlock()
	msg.Ack()
}

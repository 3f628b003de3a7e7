package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"econote-be/internal/dto"
	"econote-be/internal/pkg/logger"
	"econote-be/pkg/events"
	"econote-be/pkg/ocr"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOcrTopic = "OCR_PAGE_TEST"

type flakyEngine struct {
	failures int32
	calls    int32
	err      error
}

func (f *flakyEngine) Recognize(_ context.Context, image []byte, language string) (*ocr.Result, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	if f.err != nil {
		return nil, f.err
	}
	if n <= f.failures {
		return nil, errors.New("recognizer unavailable")
	}
	return &ocr.Result{Text: "hello world", Confidence: 0.9, Language: language}, nil
}

func startConsumer(t *testing.T, e *env, engine ocr.Engine) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	consumer := NewConsumerService(pubSub, testOcrTopic, e.gw, engine, e.events, e.notifier, logger.NewNopLogger(),
		ConsumerOptions{CanvasWidth: 100, CanvasHeight: 80, GridSpacing: 20})
	require.NoError(t, consumer.Consume(ctx))
	return pubSub
}

func queueOcr(t *testing.T, pubSub *gochannel.GoChannel, payload interface{}) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(testOcrTopic, message.NewMessage(watermill.NewUUID(), b)))
}

func TestConsumer_StoresRecognizedText(t *testing.T) {
	e := newEnv()
	res := e.notebook(t, "OCR")
	engine := &flakyEngine{failures: 1}
	pubSub := startConsumer(t, e, engine)

	queueOcr(t, pubSub, dto.OcrPageMessage{PageId: res.FirstPageId, UserId: e.userId, Language: "eng"})

	assert.Eventually(t, func() bool {
		page, _ := e.gw.GetPage(context.Background(), res.FirstPageId)
		return page != nil && page.OcrText != nil && *page.OcrText == "hello world"
	}, 2*time.Second, 10*time.Millisecond)

	page, _ := e.gw.GetPage(context.Background(), res.FirstPageId)
	assert.Equal(t, "eng", *page.OcrLanguage)
	assert.Equal(t, int32(2), atomic.LoadInt32(&engine.calls))
	assert.Eventually(t, func() bool {
		for _, typ := range e.events.types() {
			if typ == events.OcrCompleted {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestConsumer_GivesUpAfterAttempts(t *testing.T) {
	e := newEnv()
	res := e.notebook(t, "OCR")
	engine := &flakyEngine{failures: 100}
	pubSub := startConsumer(t, e, engine)

	queueOcr(t, pubSub, dto.OcrPageMessage{PageId: res.FirstPageId, UserId: e.userId, Language: "eng"})

	assert.Eventually(t, func() bool {
		return e.delivery.last().Level == dto.NotificationError
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(maxOcrAttempts), atomic.LoadInt32(&engine.calls))
}

func TestConsumer_NotConfiguredIsNotRetried(t *testing.T) {
	e := newEnv()
	res := e.notebook(t, "OCR")
	engine := &flakyEngine{err: ocr.ErrNotConfigured}
	pubSub := startConsumer(t, e, engine)

	queueOcr(t, pubSub, dto.OcrPageMessage{PageId: res.FirstPageId, UserId: e.userId})

	assert.Eventually(t, func() bool {
		return e.delivery.last().Level == dto.NotificationError
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
}

func TestConsumer_AcksInvalidAndMissing(t *testing.T) {
	e := newEnv()
	engine := &flakyEngine{}
	pubSub := startConsumer(t, e, engine)

	require.NoError(t, pubSub.Publish(testOcrTopic, message.NewMessage(watermill.NewUUID(), []byte("{"))))
	queueOcr(t, pubSub, dto.OcrPageMessage{PageId: uuid.New(), UserId: e.userId})

	res := e.notebook(t, "After")
	queueOcr(t, pubSub, dto.OcrPageMessage{PageId: res.FirstPageId, UserId: e.userId, Language: "deu"})

	assert.Eventually(t, func() bool {
		page, _ := e.gw.GetPage(context.Background(), res.FirstPageId)
		return page != nil && page.OcrText != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
}

package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPageSaved(t *testing.T) {
	userId, pageId := uuid.New(), uuid.New()

	ev := NewPageSaved(userId, pageId, 3)

	assert.Equal(t, PageSaved, ev.EventType())
	assert.Equal(t, pageId.String(), ev.Payload()["page_id"])
	assert.Equal(t, 3, ev.Payload()["stroke_count"])
	assert.Equal(t, userId.String(), UserID(ev))
	assert.False(t, ev.Timestamp().IsZero())
}

func TestUserID_Missing(t *testing.T) {
	ev := BaseEvent{Type: "X", Data: map[string]interface{}{}}
	assert.Equal(t, "", UserID(ev))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), NewNotebookDeleted(uuid.New(), uuid.New())))
}

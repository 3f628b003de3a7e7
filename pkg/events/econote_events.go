package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PageCreated     = "PAGE_CREATED"
	PageSaved       = "PAGE_SAVED"
	PageDeleted     = "PAGE_DELETED"
	NotebookCreated = "NOTEBOOK_CREATED"
	NotebookDeleted = "NOTEBOOK_DELETED"
	OcrCompleted    = "OCR_COMPLETED"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func NewPageCreated(userId, notebookId, pageId uuid.UUID, title string) BaseEvent {
	return newEvent(PageCreated, map[string]interface{}{
		"user_id":     userId.String(),
		"notebook_id": notebookId.String(),
		"page_id":     pageId.String(),
		"title":       title,
	})
}

func NewPageSaved(userId, pageId uuid.UUID, strokeCount int) BaseEvent {
	return newEvent(PageSaved, map[string]interface{}{
		"user_id":      userId.String(),
		"page_id":      pageId.String(),
		"stroke_count": strokeCount,
	})
}

func NewPageDeleted(userId, notebookId, pageId uuid.UUID) BaseEvent {
	return newEvent(PageDeleted, map[string]interface{}{
		"user_id":     userId.String(),
		"notebook_id": notebookId.String(),
		"page_id":     pageId.String(),
	})
}

func NewNotebookCreated(userId, notebookId uuid.UUID, title string) BaseEvent {
	return newEvent(NotebookCreated, map[string]interface{}{
		"user_id":     userId.String(),
		"notebook_id": notebookId.String(),
		"title":       title,
	})
}

func NewNotebookDeleted(userId, notebookId uuid.UUID) BaseEvent {
	return newEvent(NotebookDeleted, map[string]interface{}{
		"user_id":     userId.String(),
		"notebook_id": notebookId.String(),
	})
}

func NewOcrCompleted(userId, pageId uuid.UUID, language string, confidence float64) BaseEvent {
	return newEvent(OcrCompleted, map[string]interface{}{
		"user_id":    userId.String(),
		"page_id":    pageId.String(),
		"language":   language,
		"confidence": confidence,
	})
}

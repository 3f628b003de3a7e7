package dto

import (
	"time"

	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

type CreatePageRequest struct {
	NotebookId uuid.UUID `json:"notebook_id" validate:"required"`
	Title      string    `json:"title" validate:"max=200"`
}

type CreatePageResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PageIndex int       `json:"page_index"` // 1-based
}

type ShowPageResponse struct {
	Id          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Strokes     []ink.Stroke `json:"strokes"`
	ImageData   *string      `json:"image_data,omitempty"`
	IsScanned   bool         `json:"is_scanned"`
	OcrText     *string      `json:"ocr_text,omitempty"`
	OcrLanguage *string      `json:"ocr_language,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at"`
}

type UpdatePageRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=200"`
}

type UpdatePageResponse struct {
	Id uuid.UUID `json:"id"`
}

type DeletePageRequest struct {
	Id         uuid.UUID
	NotebookId uuid.UUID `query:"notebook_id" validate:"required"`
}

// ScanPageRequest creates a scanned page; ImageData is base64, optionally as a data URL.
type ScanPageRequest struct {
	NotebookId uuid.UUID `json:"notebook_id" validate:"required"`
	Title      string    `json:"title" validate:"max=200"`
	ImageData  string    `json:"image_data" validate:"required"`
}

type RequestOcrRequest struct {
	Id       uuid.UUID
	Language string `json:"language" validate:"omitempty,min=2,max=16"`
}

type RequestOcrResponse struct {
	PageId   uuid.UUID `json:"page_id"`
	Language string    `json:"language"`
	Status   string    `json:"status"`
}

// OcrPageMessage is the payload of an OCR job on the message queue.
type OcrPageMessage struct {
	PageId   uuid.UUID `json:"page_id"`
	UserId   uuid.UUID `json:"user_id"`
	Language string    `json:"language"`
}

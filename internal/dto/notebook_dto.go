package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNotebookRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type CreateNotebookResponse struct {
	Id          uuid.UUID `json:"id"`
	FirstPageId uuid.UUID `json:"first_page_id"`
}

type NotebookPageSummary struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsScanned bool      `json:"is_scanned"`
}

type GetAllNotebookResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	PageCount int        `json:"page_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShowNotebookResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Pages     []*NotebookPageSummary `json:"pages"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt *time.Time             `json:"updated_at"`
}

type UpdateNotebookRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=200"`
}

type UpdateNotebookResponse struct {
	Id uuid.UUID `json:"id"`
}

package entity

import (
	"time"

	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

// Page is either a drawing page (Strokes set) or a scanned page (ImageData set, IsScanned true).
type Page struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Strokes     []ink.Stroke
	ImageData   *string // base64 encoded image of a scanned page
	IsScanned   bool
	OcrText     *string
	OcrLanguage *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewPage(userId uuid.UUID, title string) *Page {
	return &Page{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		Strokes:   make([]ink.Stroke, 0),
		CreatedAt: time.Now(),
	}
}

func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	c := *p
	c.Strokes = ink.CloneStrokes(p.Strokes)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// Package ocr defines the handwriting recognition collaborator and an HTTP client for it.
package ocr

import (
	"context"
	"errors"
	"time"
)

var ErrNotConfigured = errors.New("ocr engine is not configured")

// Result is what a recognizer returns for one page image.
type Result struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Language   string        `json:"language"`
	Duration   time.Duration `json:"duration"`
}

// Engine recognizes text in a rendered page image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, language string) (*Result, error)
}

// DisabledEngine reports ErrNotConfigured for every request.
type DisabledEngine struct{}

func (DisabledEngine) Recognize(context.Context, []byte, string) (*Result, error) {
	return nil, ErrNotConfigured
}

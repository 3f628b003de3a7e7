package mapper

import (
	"encoding/json"
	"fmt"

	"econote-be/pkg/ink"

	"github.com/google/uuid"
)

// EncodeStrokes serializes a stroke sequence. A nil sequence encodes as [].
func EncodeStrokes(strokes []ink.Stroke) ([]byte, error) {
	if strokes == nil {
		strokes = []ink.Stroke{}
	}
	b, err := json.Marshal(strokes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode strokes: %w", err)
	}
	return b, nil
}

func DecodeStrokes(b []byte) ([]ink.Stroke, error) {
	strokes := make([]ink.Stroke, 0)
	if len(b) == 0 {
		return strokes, nil
	}
	if err := json.Unmarshal(b, &strokes); err != nil {
		return nil, fmt.Errorf("failed to decode strokes: %w", err)
	}
	return strokes, nil
}

func EncodePageIds(ids []uuid.UUID) ([]byte, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return json.Marshal(ids)
}

func DecodePageIds(b []byte) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if len(b) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode page ids: %w", err)
	}
	return ids, nil
}

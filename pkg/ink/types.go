package ink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPressure is used by input sources without pressure sensing (mouse, finger, simulated pen).
const DefaultPressure = 1.0

// Point is a single sample of a stroke. Coordinates are in unscaled surface space.
type Point struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pressure  float64 `json:"pressure"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// NewPoint stamps a full-pressure point with the given time.
func NewPoint(x, y float64, at time.Time) Point {
	return Point{X: x, Y: y, Pressure: DefaultPressure, Timestamp: at.UnixMilli()}
}

// Stroke is one continuous gesture sharing a single color and width.
type Stroke struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// Clone returns a copy whose point slice does not alias the receiver's.
func (s Stroke) Clone() Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	s.Points = pts
	return s
}

// CloneStrokes deep-copies a stroke sequence.
func CloneStrokes(strokes []Stroke) []Stroke {
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		out[i] = s.Clone()
	}
	return out
}

// NewStrokeID builds a time-based id with a random suffix, e.g. "stroke-lz3k9f2a-1b2c3d".
// Unique enough within a page; not cryptographically unique.
func NewStrokeID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("stroke-%s-%s", strconv.FormatInt(time.Now().UnixMilli(), 36), suffix)
}

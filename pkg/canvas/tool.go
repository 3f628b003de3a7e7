package canvas

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolFinger Tool = "finger"
	ToolEraser Tool = "eraser"
	ToolHand   Tool = "hand"
)

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.1

	Background  = "#ffffff"
	GridColor   = "#e5e7eb"
	GridSpacing = 30

	DefaultColor = "#000000"
	DefaultWidth = 2.0
	MaxWidth     = 64.0

	// Finger strokes ignore the pen settings.
	FingerColor = "#000000"
	FingerWidth = 3.0

	EraserWidthFactor = 3
)

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrInvalidColor = errors.New("color must be #rgb or #rrggbb")
	ErrInvalidWidth = errors.New("width out of range")
	ErrNoSurface    = errors.New("drawing surface is not attached")
)

// colorRule accepts the two hex forms the raster surface can parse.
const colorRule = "hexcolor,len=4|len=7"

var validate = validator.New()

func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolPen, ToolFinger, ToolEraser, ToolHand:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// Draws reports whether the tool produces strokes.
func (t Tool) Draws() bool {
	return t != ToolHand
}

func ValidateColor(c string) error {
	if err := validate.Var(c, colorRule); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return nil
}

func ValidateWidth(w float64) error {
	if w <= 0 || w > MaxWidth {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, w)
	}
	return nil
}

// ClampZoom rounds a scale to hundredths and keeps it inside [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	z = math.Round(z*100) / 100
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

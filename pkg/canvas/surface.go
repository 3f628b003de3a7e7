package canvas

import "econote-be/pkg/ink"

// Surface is a 2-D render target. Coordinates passed to it are unscaled; the surface applies
// the scale set by SetScale as its visual transform.
type Surface interface {
	// Size is the pixel size of the target.
	Size() (width, height int)
	SetScale(scale float64)
	// Clear fills the whole target, ignoring the scale.
	Clear(color string)
	DrawHorizontalLine(y float64, color string, width float64)
	// DrawStroke draws a polyline with round caps and joins.
	DrawStroke(stroke ink.Stroke)
	DrawSegment(from, to ink.Point, color string, width float64)
}

type RenderOptions struct {
	Background  string
	GridColor   string
	GridSpacing float64
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Background: Background, GridColor: GridColor, GridSpacing: GridSpacing}
}

// Render repaints the full page: background, reference grid, then every stroke in order.
// A nil surface is skipped.
func Render(s Surface, strokes []ink.Stroke, scale float64, opts RenderOptions) {
	if s == nil {
		return
	}
	s.SetScale(scale)
	s.Clear(opts.Background)

	if opts.GridSpacing > 0 && scale > 0 {
		_, h := s.Size()
		limit := float64(h) / scale
		for y := opts.GridSpacing; y < limit; y += opts.GridSpacing {
			s.DrawHorizontalLine(y, opts.GridColor, 1)
		}
	}

	for _, st := range strokes {
		s.DrawStroke(st)
	}
}

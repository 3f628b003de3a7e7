package canvas

import (
	"image"
	"io"

	"econote-be/pkg/ink"

	"github.com/fogleman/gg"
)

// RasterSurface renders into an in-memory RGBA image through gg.
type RasterSurface struct {
	dc    *gg.Context
	scale float64
}

func NewRasterSurface(width, height int) *RasterSurface {
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &RasterSurface{dc: dc, scale: 1}
}

func (r *RasterSurface) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

func (r *RasterSurface) SetScale(scale float64) {
	r.scale = scale
	r.dc.Identity()
	r.dc.Scale(scale, scale)
}

func (r *RasterSurface) Clear(color string) {
	r.dc.SetHexColor(color)
	r.dc.Clear()
}

func (r *RasterSurface) DrawHorizontalLine(y float64, color string, width float64) {
	r.dc.SetHexColor(color)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(0, y, float64(r.dc.Width())/r.scale, y)
	r.dc.Stroke()
}

// gg does not transform line widths, so widths are scaled by hand.
func (r *RasterSurface) DrawStroke(st ink.Stroke) {
	if len(st.Points) == 0 {
		return
	}
	r.dc.SetHexColor(st.Color)
	if len(st.Points) == 1 {
		p := st.Points[0]
		r.dc.DrawCircle(p.X, p.Y, st.Width/2)
		r.dc.Fill()
		return
	}
	r.dc.SetLineWidth(st.Width * r.scale)
	r.dc.MoveTo(st.Points[0].X, st.Points[0].Y)
	for _, p := range st.Points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.Stroke()
}

func (r *RasterSurface) DrawSegment(from, to ink.Point, color string, width float64) {
	r.dc.SetHexColor(color)
	r.dc.SetLineWidth(width * r.scale)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

func (r *RasterSurface) Image() image.Image {
	return r.dc.Image()
}

func (r *RasterSurface) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Context exposes the gg context for overlays such as captions.
func (r *RasterSurface) Context() *gg.Context {
	return r.dc
}

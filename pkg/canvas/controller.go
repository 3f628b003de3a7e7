// Package canvas binds pointer and touch input to strokes and owns the page re-render loop.
package canvas

import (
	"io"
	"time"

	"econote-be/pkg/ink"
)

// Touch is the subset of a touch event the controller needs.
type Touch interface {
	Position() (x, y float64)
	PreventDefault()
}

// Encoder is a surface that can serialize its current raster.
type Encoder interface {
	EncodePNG(w io.Writer) error
}

type Option func(*Controller)

func WithRenderOptions(o RenderOptions) Option {
	return func(c *Controller) { c.render = o }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// Controller is the drawing surface controller of one session. Not safe for concurrent use.
type Controller struct {
	store   *ink.Store
	surface Surface
	render  RenderOptions
	now     func() time.Time
	newID   func() string

	tool  Tool
	color string
	width float64
	zoom  float64

	drawing  bool
	activeID string
}

func NewController(store *ink.Store, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		render: DefaultRenderOptions(),
		now:    time.Now,
		newID:  ink.NewStrokeID,
		tool:   ToolPen,
		color:  DefaultColor,
		width:  DefaultWidth,
		zoom:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach binds a surface and repaints it.
func (c *Controller) Attach(s Surface) {
	c.surface = s
	c.Redraw()
}

// Detach unbinds the surface. Input is ignored until a surface is attached again.
func (c *Controller) Detach() {
	c.surface = nil
	c.drawing = false
}

func (c *Controller) Surface() Surface { return c.surface }

func (c *Controller) Store() *ink.Store { return c.store }

func (c *Controller) Tool() Tool { return c.tool }

func (c *Controller) SetTool(t Tool) error {
	if _, err := ParseTool(string(t)); err != nil {
		return err
	}
	c.tool = t
	c.drawing = false
	return nil
}

func (c *Controller) Color() string { return c.color }

func (c *Controller) SetColor(color string) error {
	if err := ValidateColor(color); err != nil {
		return err
	}
	c.color = color
	return nil
}

func (c *Controller) Width() float64 { return c.width }

func (c *Controller) SetWidth(w float64) error {
	if err := ValidateWidth(w); err != nil {
		return err
	}
	c.width = w
	return nil
}

func (c *Controller) Zoom() float64 { return c.zoom }

func (c *Controller) SetZoom(z float64) {
	c.zoom = ClampZoom(z)
	c.Redraw()
}

func (c *Controller) ZoomIn() float64 {
	c.SetZoom(c.zoom + ZoomStep)
	return c.zoom
}

func (c *Controller) ZoomOut() float64 {
	c.SetZoom(c.zoom - ZoomStep)
	return c.zoom
}

// Drawing reports whether a pointer or touch stroke is in progress.
func (c *Controller) Drawing() bool { return c.drawing }

// style is the color and width the active tool draws with.
func (c *Controller) style() (string, float64) {
	switch c.tool {
	case ToolFinger:
		return FingerColor, FingerWidth
	case ToolEraser:
		return c.render.Background, c.width * EraserWidthFactor
	default:
		return c.color, c.width
	}
}

func (c *Controller) point(screenX, screenY float64) ink.Point {
	return ink.NewPoint(screenX/c.zoom, screenY/c.zoom, c.now())
}

func (c *Controller) begin(screenX, screenY float64) {
	color, width := c.style()
	st := ink.Stroke{
		ID:     c.newID(),
		Points: []ink.Point{c.point(screenX, screenY)},
		Color:  color,
		Width:  width,
	}
	c.store.Append(st)
	c.activeID = st.ID
	c.drawing = true
	c.Redraw()
}

func (c *Controller) extend(screenX, screenY float64) {
	last, ok := c.store.Last()
	if !ok || last.ID != c.activeID {
		// The stroke was undone or replaced under us.
		c.drawing = false
		return
	}
	p := c.point(screenX, screenY)
	if err := c.store.AppendPoints(c.activeID, p); err != nil {
		c.drawing = false
		return
	}
	prev := last.Points[len(last.Points)-1]
	c.surface.SetScale(c.zoom)
	c.surface.DrawSegment(prev, p, last.Color, last.Width)
}

func (c *Controller) end() {
	c.drawing = false
	c.activeID = ""
}

func (c *Controller) PointerDown(screenX, screenY float64) {
	if c.surface == nil || !c.tool.Draws() {
		return
	}
	c.begin(screenX, screenY)
}

func (c *Controller) PointerMove(screenX, screenY float64) {
	if c.surface == nil || !c.drawing || !c.tool.Draws() {
		return
	}
	c.extend(screenX, screenY)
}

func (c *Controller) PointerUp() { c.end() }

func (c *Controller) PointerLeave() { c.end() }

// TouchStart begins a finger stroke. It reports whether the event was consumed,
// in which case default handling (page scroll) has been prevented.
func (c *Controller) TouchStart(t Touch) bool {
	if c.surface == nil || c.tool != ToolFinger {
		return false
	}
	t.PreventDefault()
	x, y := t.Position()
	c.begin(x, y)
	return true
}

func (c *Controller) TouchMove(t Touch) bool {
	if c.surface == nil || c.tool != ToolFinger || !c.drawing {
		return false
	}
	t.PreventDefault()
	x, y := t.Position()
	c.extend(x, y)
	return true
}

func (c *Controller) TouchEnd(t Touch) bool {
	if c.tool != ToolFinger {
		return false
	}
	t.PreventDefault()
	c.end()
	return true
}

// ApplyStrokeData merges points from an external source (the pen decoder) into the store:
// the first update for an id opens a stroke in the pen color and width, later ones extend it.
func (c *Controller) ApplyStrokeData(strokeID string, points []ink.Point) {
	if len(points) == 0 {
		return
	}
	if last, ok := c.store.Last(); ok && last.ID == strokeID {
		_ = c.store.AppendPoints(strokeID, points...)
	} else {
		c.store.Append(ink.Stroke{ID: strokeID, Points: points, Color: c.color, Width: c.width})
		c.drawing = false
	}
	c.Redraw()
}

func (c *Controller) Undo() bool {
	c.end()
	ok := c.store.Undo()
	if ok {
		c.Redraw()
	}
	return ok
}

func (c *Controller) Redo() bool {
	c.end()
	ok := c.store.Redo()
	if ok {
		c.Redraw()
	}
	return ok
}

func (c *Controller) Clear() {
	c.end()
	c.store.Clear()
	c.Redraw()
}

// Strokes returns a copy of the live stroke sequence.
func (c *Controller) Strokes() []ink.Stroke {
	return c.store.Strokes()
}

// Load swaps in the strokes of another page and repaints.
func (c *Controller) Load(strokes []ink.Stroke) {
	c.end()
	c.store.Load(strokes)
	c.Redraw()
}

// Redraw repaints the full page. No-op without a surface.
func (c *Controller) Redraw() {
	Render(c.surface, c.store.Strokes(), c.zoom, c.render)
}

// Save repaints and writes the surface as PNG.
func (c *Controller) Save(w io.Writer) error {
	enc, ok := c.surface.(Encoder)
	if !ok {
		return ErrNoSurface
	}
	c.Redraw()
	return enc.EncodePNG(w)
}

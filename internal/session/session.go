// Package session holds the per-tab drawing state: stroke store, drawing surface controller,
// pen decoder and page navigator, serialized behind one mutex.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"econote-be/internal/navigator"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/contract"
	"econote-be/pkg/calibration"
	"econote-be/pkg/canvas"
	"econote-be/pkg/ink"
	"econote-be/pkg/pen"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session is closed")
	ErrUnknownEvent     = errors.New("unknown input event")
	ErrUnknownDirection = errors.New("zoom direction must be \"in\" or \"out\"")
	ErrNoCalibration    = errors.New("no calibration procedure is running")
)

// Event types pushed to pen stream observers.
const (
	EventStrokeData    = "stroke_data"
	EventStrokeEnd     = "stroke_end"
	EventCalibration   = "calibration"
	EventSessionClosed = "session_closed"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type StrokeEnd struct {
	StrokeID string `json:"stroke_id"`
}

// CalibrationStep reports progress of a running calibration procedure.
type CalibrationStep struct {
	Index  int                      `json:"index"`
	Total  int                      `json:"total"`
	Target *calibration.Target      `json:"target,omitempty"`
	Done   bool                     `json:"done"`
	Result *calibration.Calibration `json:"result,omitempty"`
}

type Options struct {
	Width             int
	Height            int
	GridSpacing       int
	FlushInterval     time.Duration
	MaxBufferedPoints int
}

// State is a snapshot of a session for display.
type State struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	NotebookId  uuid.UUID
	PageId      uuid.UUID
	PageTitle   string
	PageIndex   int
	TotalPages  int
	Tool        canvas.Tool
	Color       string
	Width       float64
	Zoom        float64
	Strokes     []ink.Stroke
	RedoSize    int
	Calibrating bool
}

// Settings changes tool state; nil fields are left as they are.
type Settings struct {
	Tool  *string
	Color *string
	Width *float64
}

type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	userId uuid.UUID
	logger logger.ILogger

	store      *ink.Store
	controller *canvas.Controller
	surface    *canvas.RasterSurface
	decoder    *pen.Decoder
	nav        *navigator.Navigator

	calibration *calibration.Holder
	procedure   *calibration.Procedure

	observers  map[int]func(Event)
	nextObsKey int
	closed     bool
}

// New builds a session whose pen decoder reads the shared calibration holder.
// The session has no page until Open succeeds.
func New(userId uuid.UUID, gw contract.PersistenceGateway, cal *calibration.Holder, opts Options, log logger.ILogger) *Session {
	s := &Session{
		id:          uuid.New(),
		userId:      userId,
		logger:      log,
		store:       ink.NewStore(),
		calibration: cal,
		observers:   make(map[int]func(Event)),
	}

	render := canvas.DefaultRenderOptions()
	if opts.GridSpacing > 0 {
		render.GridSpacing = float64(opts.GridSpacing)
	}
	s.controller = canvas.NewController(s.store, canvas.WithRenderOptions(render))
	s.surface = canvas.NewRasterSurface(opts.Width, opts.Height)
	s.controller.Attach(s.surface)

	s.decoder = pen.NewDecoder(cal,
		pen.WithLogger(log),
		pen.WithFlushPolicy(opts.MaxBufferedPoints, opts.FlushInterval),
		pen.OnStrokeData(s.onStrokeData),
		pen.OnStrokeEnd(s.onStrokeEnd),
	)
	s.nav = navigator.New(gw, s.controller)
	return s
}

func (s *Session) Id() uuid.UUID { return s.id }

func (s *Session) UserId() uuid.UUID { return s.userId }

func (s *Session) Open(ctx context.Context, notebookId, pageId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.nav.Open(ctx, notebookId, pageId)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	st := State{
		Id:          s.id,
		UserId:      s.userId,
		PageIndex:   s.nav.CurrentIndex(),
		TotalPages:  s.nav.TotalPages(),
		Tool:        s.controller.Tool(),
		Color:       s.controller.Color(),
		Width:       s.controller.Width(),
		Zoom:        s.controller.Zoom(),
		Strokes:     s.controller.Strokes(),
		RedoSize:    s.store.RedoSize(),
		Calibrating: s.procedure != nil,
	}
	if nb := s.nav.Notebook(); nb != nil {
		st.NotebookId = nb.Id
	}
	if page := s.nav.CurrentPage(); page != nil {
		st.PageId = page.Id
		st.PageTitle = page.Title
	}
	return st
}

// Pointer routes a mouse or pen-pointer event: down, move, up or leave.
func (s *Session) Pointer(event string, x, y float64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event {
	case "down":
		s.controller.PointerDown(x, y)
	case "move":
		s.controller.PointerMove(x, y)
	case "up":
		s.controller.PointerUp()
	case "leave":
		s.controller.PointerLeave()
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return s.state(), nil
}

type touchPoint struct {
	x, y      float64
	prevented bool
}

func (t *touchPoint) Position() (float64, float64) { return t.x, t.y }
func (t *touchPoint) PreventDefault()              { t.prevented = true }

// Touch routes a touch event: start, move or end. It reports whether default handling
// (page scroll) must be prevented.
func (s *Session) Touch(event string, x, y float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &touchPoint{x: x, y: y}
	switch event {
	case "start":
		s.controller.TouchStart(t)
	case "move":
		s.controller.TouchMove(t)
	case "end":
		s.controller.TouchEnd(t)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return t.prevented, nil
}

// Configure applies tool, color and width together; nothing changes if any is invalid.
func (s *Session) Configure(set Settings) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set.Tool != nil {
		if _, err := canvas.ParseTool(*set.Tool); err != nil {
			return State{}, err
		}
	}
	if set.Color != nil {
		if err := canvas.ValidateColor(*set.Color); err != nil {
			return State{}, err
		}
	}
	if set.Width != nil {
		if err := canvas.ValidateWidth(*set.Width); err != nil {
			return State{}, err
		}
	}

	if set.Tool != nil {
		_ = s.controller.SetTool(canvas.Tool(*set.Tool))
	}
	if set.Color != nil {
		_ = s.controller.SetColor(*set.Color)
	}
	if set.Width != nil {
		_ = s.controller.SetWidth(*set.Width)
	}
	return s.state(), nil
}

func (s *Session) Zoom(direction string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch direction {
	case "in":
		return s.controller.ZoomIn(), nil
	case "out":
		return s.controller.ZoomOut(), nil
	}
	return s.controller.Zoom(), ErrUnknownDirection
}

func (s *Session) Undo() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Undo()
	return s.state()
}

func (s *Session) Redo() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Redo()
	return s.state()
}

func (s *Session) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Clear()
	return s.state()
}

// Save flushes the live strokes to the gateway, then writes the surface as PNG.
func (s *Session) Save(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.nav.Flush(ctx); err != nil {
		return err
	}
	return s.controller.Save(w)
}

// Flush writes the live strokes of the current page to the gateway.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Flush(ctx)
}

// Render writes the current surface as PNG without persisting anything.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Save(w)
}

func (s *Session) Next(ctx context.Context) (State, error) {
	return s.navigate(func() error { return s.nav.Next(ctx) })
}

func (s *Session) Previous(ctx context.Context) (State, error) {
	return s.navigate(func() error { return s.nav.Previous(ctx) })
}

func (s *Session) SwitchTo(ctx context.Context, pageId uuid.UUID) (State, error) {
	return s.navigate(func() error { return s.nav.SwitchTo(ctx, pageId) })
}

func (s *Session) DeletePage(ctx context.Context, pageId uuid.UUID) (State, error) {
	return s.navigate(func() error { return s.nav.DeletePage(ctx, pageId) })
}

func (s *Session) CreatePage(ctx context.Context, title string) (uuid.UUID, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.nav.CreatePage(ctx, title)
	if err != nil {
		return uuid.Nil, State{}, err
	}
	return page.Id, s.state(), nil
}

// navigate closes any open pen stroke before the page changes, so its points land on the
// outgoing page.
func (s *Session) navigate(fn func() error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decoder.Close()
	if err := fn(); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// Feed hands one pen notification to the decoder. While a calibration procedure runs,
// pen-down packets are captured as raw observed points instead of drawing.
// A closed session refuses the packet with ErrSessionClosed.
func (s *Session) Feed(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.procedure == nil {
		s.decoder.Feed(b)
		return nil
	}

	pkt, err := pen.ParsePacket(b)
	if err != nil {
		s.decoder.Feed(b)
		return nil
	}
	if pkt.Type != pen.PacketPenDown {
		return nil
	}
	step, err := s.capture(pkt.X, pkt.Y)
	if err != nil {
		s.logger.Warn("Session", "Calibration capture failed", map[string]interface{}{
			"session_id": s.id.String(),
			"error":      err.Error(),
		})
		return nil
	}
	s.emit(Event{Type: EventCalibration, Data: step})
	return nil
}

// FlushIfDue emits buffered pen points that have waited past the flush interval.
func (s *Session) FlushIfDue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.decoder.FlushIfDue()
}

// EndPenStroke closes an open pen stroke, e.g. when the pen disconnects.
func (s *Session) EndPenStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.decoder.Close()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Observe registers fn for pen stream events. fn runs with the session locked and must not block.
func (s *Session) Observe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.nextObsKey
	s.nextObsKey++
	s.observers[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

func (s *Session) emit(e Event) {
	for _, fn := range s.observers {
		fn(e)
	}
}

func (s *Session) onStrokeData(u pen.StrokeUpdate) {
	if s.closed {
		return
	}
	s.controller.ApplyStrokeData(u.StrokeID, u.Points)
	s.emit(Event{Type: EventStrokeData, Data: u})
}

func (s *Session) onStrokeEnd(strokeID string) {
	s.emit(Event{Type: EventStrokeEnd, Data: StrokeEnd{StrokeID: strokeID}})
}

// StartCalibration begins a capture procedure over targets (the default four when empty).
func (s *Session) StartCalibration(targets []calibration.Target) (CalibrationStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(targets) == 0 {
		targets = calibration.DefaultTargets()
	}
	proc, err := calibration.NewProcedure(targets)
	if err != nil {
		return CalibrationStep{}, err
	}
	s.decoder.Close()
	s.procedure = proc
	return s.step(), nil
}

// CaptureCalibration records a raw observed point for the current target. After the last
// target the estimated calibration replaces the shared one.
func (s *Session) CaptureCalibration(rawX, rawY float64) (CalibrationStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture(rawX, rawY)
}

func (s *Session) CancelCalibration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procedure = nil
}

func (s *Session) capture(rawX, rawY float64) (CalibrationStep, error) {
	if s.procedure == nil {
		return CalibrationStep{}, ErrNoCalibration
	}
	done, err := s.procedure.Capture(rawX, rawY)
	if err != nil {
		return CalibrationStep{}, err
	}
	if !done {
		return s.step(), nil
	}

	result, err := s.procedure.Result()
	total := s.procedure.Total()
	s.procedure = nil
	if err != nil {
		return CalibrationStep{}, err
	}
	s.calibration.Replace(result)
	s.logger.Info("Session", "Calibration applied", map[string]interface{}{
		"session_id": s.id.String(),
		"offset_x":   result.OffsetX,
		"offset_y":   result.OffsetY,
		"scale_x":    result.ScaleX,
		"scale_y":    result.ScaleY,
	})
	return CalibrationStep{Index: total, Total: total, Done: true, Result: &result}, nil
}

func (s *Session) step() CalibrationStep {
	target, idx, ok := s.procedure.Current()
	step := CalibrationStep{Index: idx, Total: s.procedure.Total()}
	if ok {
		step.Target = &target
	}
	return step
}

// Close ends any open pen stroke and flushes the current page. Later calls are no-ops.
// On a flush failure the session stays open, unless the page was deleted elsewhere:
// then there is nowhere to write, the session closes and the error is still returned.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.decoder.Close()
	err := s.nav.Flush(ctx)
	if err != nil && !errors.Is(err, navigator.ErrPageNotFound) {
		return err
	}
	s.closed = true
	s.controller.Detach()
	s.observers = make(map[int]func(Event))
	return err
}

package pen

import (
	"time"

	"econote-be/internal/pkg/logger"
	"econote-be/pkg/calibration"
	"econote-be/pkg/ink"
)

const (
	DefaultMaxBufferedPoints = 10
	DefaultFlushInterval     = 100 * time.Millisecond
)

// StrokeUpdate carries the points buffered since the previous flush of an open stroke.
type StrokeUpdate struct {
	StrokeID string      `json:"stroke_id"`
	Points   []ink.Point `json:"points"`
}

type Option func(*Decoder)

func WithClock(now func() time.Time) Option {
	return func(d *Decoder) { d.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(d *Decoder) { d.newID = gen }
}

func WithLogger(l logger.ILogger) Option {
	return func(d *Decoder) { d.logger = l }
}

// WithFlushPolicy sets how many buffered points, or how much time since the last flush,
// triggers a stroke update. Non-positive values keep the defaults.
func WithFlushPolicy(maxBuffered int, interval time.Duration) Option {
	return func(d *Decoder) {
		if maxBuffered > 0 {
			d.maxBuffered = maxBuffered
		}
		if interval > 0 {
			d.flushInterval = interval
		}
	}
}

func OnStrokeData(fn func(StrokeUpdate)) Option {
	return func(d *Decoder) { d.onData = fn }
}

func OnStrokeEnd(fn func(strokeID string)) Option {
	return func(d *Decoder) { d.onEnd = fn }
}

// Decoder turns pen packets into calibrated points framed by pen-down/pen-up.
// It is driven from a single goroutine per pen connection.
type Decoder struct {
	cal    calibration.Provider
	logger logger.ILogger
	now    func() time.Time
	newID  func() string

	maxBuffered   int
	flushInterval time.Duration

	onData func(StrokeUpdate)
	onEnd  func(string)

	strokeID  string
	open      bool
	buffer    []ink.Point
	lastFlush time.Time
}

func NewDecoder(cal calibration.Provider, opts ...Option) *Decoder {
	d := &Decoder{
		cal:           cal,
		logger:        logger.NewNopLogger(),
		now:           time.Now,
		newID:         ink.NewStrokeID,
		maxBuffered:   DefaultMaxBufferedPoints,
		flushInterval: DefaultFlushInterval,
		onData:        func(StrokeUpdate) {},
		onEnd:         func(string) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed decodes one notification payload. Malformed packets are logged and dropped
// without touching the framing state.
func (d *Decoder) Feed(b []byte) {
	if err := d.Decode(b); err != nil {
		details := map[string]interface{}{
			"error":  err.Error(),
			"length": len(b),
		}
		if len(b) > 0 {
			details["type"] = PacketType(b[0]).String()
		}
		d.logger.Warn("PenDecoder", "Dropped malformed pen packet", details)
	}
}

// Decode is Feed with the decode error returned instead of logged.
func (d *Decoder) Decode(b []byte) error {
	pkt, err := ParsePacket(b)
	if err != nil {
		return err
	}

	switch pkt.Type {
	case PacketPenDown:
		if d.open {
			d.endStroke()
		}
		d.beginStroke()
		d.push(pkt)
	case PacketPenMove:
		if !d.open {
			// Missed pen-down: start a stroke rather than drop ink.
			d.beginStroke()
		}
		d.push(pkt)
	case PacketPenUp:
		if d.open {
			d.endStroke()
		}
	}
	return nil
}

// FlushIfDue emits buffered points of the open stroke when the flush interval has passed.
// Callers drive it from a ticker so a slow pen still meets the latency bound.
func (d *Decoder) FlushIfDue() {
	if d.open && len(d.buffer) > 0 && d.now().Sub(d.lastFlush) > d.flushInterval {
		d.flush()
	}
}

// Close ends any open stroke, as if a pen-up had arrived.
func (d *Decoder) Close() {
	if d.open {
		d.endStroke()
	}
}

// StrokeOpen reports whether a stroke is open and its id.
func (d *Decoder) StrokeOpen() (string, bool) {
	return d.strokeID, d.open
}

func (d *Decoder) beginStroke() {
	d.strokeID = d.newID()
	d.open = true
	d.buffer = d.buffer[:0]
	d.lastFlush = d.now()
}

func (d *Decoder) endStroke() {
	d.flush()
	id := d.strokeID
	d.open = false
	d.strokeID = ""
	d.onEnd(id)
}

func (d *Decoder) push(pkt Packet) {
	now := d.now()
	x, y := d.cal.Get().Apply(pkt.X, pkt.Y)
	d.buffer = append(d.buffer, ink.Point{
		X:         x,
		Y:         y,
		Pressure:  pkt.Pressure(),
		Timestamp: now.UnixMilli(),
	})

	if len(d.buffer) > d.maxBuffered || now.Sub(d.lastFlush) > d.flushInterval {
		d.flush()
	}
}

func (d *Decoder) flush() {
	if len(d.buffer) == 0 {
		return
	}
	pts := make([]ink.Point, len(d.buffer))
	copy(pts, d.buffer)
	d.buffer = d.buffer[:0]
	d.lastFlush = d.now()
	d.onData(StrokeUpdate{StrokeID: d.strokeID, Points: pts})
}

package pen

import (
	"fmt"
	"testing"
	"time"

	"econote-be/pkg/calibration"
	"econote-be/pkg/ink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct {
	updates []StrokeUpdate
	ends    []string
}

func (r *recorder) points(id string) []ink.Point {
	var out []ink.Point
	for _, u := range r.updates {
		if u.StrokeID == id {
			out = append(out, u.Points...)
		}
	}
	return out
}

func newTestDecoder(t *testing.T, cal calibration.Provider) (*Decoder, *recorder, *fakeClock) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	d := NewDecoder(cal,
		WithClock(clock.Now),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("s%d", n) }),
		OnStrokeData(func(u StrokeUpdate) { rec.updates = append(rec.updates, u) }),
		OnStrokeEnd(func(id string) { rec.ends = append(rec.ends, id) }),
	)
	return d, rec, clock
}

func packet(t *testing.T, pt PacketType, x, y float64, pressure int) []byte {
	t.Helper()
	b, err := Encode(pt, x, y, pressure)
	require.NoError(t, err)
	return b
}

func TestDecoder_DownMoveUp(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 10, 20, 512))
	d.Feed(packet(t, PacketPenMove, 15, 20, 512))
	d.Feed(packet(t, PacketPenUp, 0, 0, 0))

	require.Equal(t, []string{"s1"}, rec.ends)
	pts := rec.points("s1")
	require.Len(t, pts, 2)
	assert.Equal(t, 10.0, pts[0].X)
	assert.Equal(t, 15.0, pts[1].X)
	for _, p := range pts {
		assert.InDelta(t, 0.5, p.Pressure, 1e-9)
	}
	_, open := d.StrokeOpen()
	assert.False(t, open)
}

func TestDecoder_AppliesCalibration(t *testing.T) {
	holder := calibration.NewHolder()
	holder.Replace(calibration.Calibration{OffsetX: -5, OffsetY: 3, ScaleX: 2, ScaleY: 2})
	d, rec, _ := newTestDecoder(t, holder)

	d.Feed(packet(t, PacketPenDown, 10, 20, 1024))
	d.Feed(packet(t, PacketPenUp, 0, 0, 0))

	pts := rec.points("s1")
	require.Len(t, pts, 1)
	wantX, wantY := holder.Get().Apply(10, 20)
	assert.Equal(t, wantX, pts[0].X)
	assert.Equal(t, wantY, pts[0].Y)
}

func TestDecoder_PenDownWhileOpenClosesPrevious(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 1, 1, 100))
	d.Feed(packet(t, PacketPenMove, 2, 2, 100))
	d.Feed(packet(t, PacketPenDown, 50, 50, 100))

	require.Equal(t, []string{"s1"}, rec.ends)
	assert.Len(t, rec.points("s1"), 2)
	id, open := d.StrokeOpen()
	assert.True(t, open)
	assert.Equal(t, "s2", id)
}

func TestDecoder_FlushesWhenBufferExceedsLimit(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 0, 0, 100))
	for i := 1; i <= 9; i++ {
		d.Feed(packet(t, PacketPenMove, float64(i), 0, 100))
	}
	assert.Empty(t, rec.updates, "10 buffered points must not flush yet")

	d.Feed(packet(t, PacketPenMove, 10, 0, 100))
	require.Len(t, rec.updates, 1)
	assert.Len(t, rec.updates[0].Points, 11)
	assert.Empty(t, rec.ends)
}

func TestDecoder_FlushesAfterInterval(t *testing.T) {
	d, rec, clock := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 0, 0, 100))
	clock.Advance(50 * time.Millisecond)
	d.Feed(packet(t, PacketPenMove, 1, 0, 100))
	assert.Empty(t, rec.updates)

	clock.Advance(60 * time.Millisecond)
	d.Feed(packet(t, PacketPenMove, 2, 0, 100))
	require.Len(t, rec.updates, 1)
	assert.Len(t, rec.updates[0].Points, 3)
}

func TestDecoder_FlushIfDue(t *testing.T) {
	d, rec, clock := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 0, 0, 100))
	d.FlushIfDue()
	assert.Empty(t, rec.updates)

	clock.Advance(101 * time.Millisecond)
	d.FlushIfDue()
	require.Len(t, rec.updates, 1)

	d.FlushIfDue()
	assert.Len(t, rec.updates, 1, "empty buffer must not emit")
}

func TestDecoder_MalformedPacketLeavesStateUnchanged(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenDown, 0, 0, 100))
	d.Feed([]byte{0x02, 0x01})
	d.Feed(nil)
	d.Feed([]byte{0x99})

	id, open := d.StrokeOpen()
	assert.True(t, open)
	assert.Equal(t, "s1", id)
	assert.Empty(t, rec.ends)

	assert.ErrorIs(t, d.Decode([]byte{0x02}), ErrShortPacket)
}

func TestDecoder_MoveWithoutDownOpensStroke(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed(packet(t, PacketPenMove, 3, 4, 100))
	d.Close()

	assert.Equal(t, []string{"s1"}, rec.ends)
	assert.Len(t, rec.points("s1"), 1)
}

func TestDecoder_UpWithoutStrokeIsNoop(t *testing.T) {
	d, rec, _ := newTestDecoder(t, calibration.NewHolder())

	d.Feed([]byte{0x03})
	d.Close()

	assert.Empty(t, rec.ends)
	assert.Empty(t, rec.updates)
}

package session

import (
	"bytes"
	"context"
	"image/png"
	"sync"
	"testing"
	"time"

	"econote-be/internal/entity"
	"econote-be/internal/navigator"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/memory"
	"econote-be/pkg/calibration"
	"econote-be/pkg/ink"
	"econote-be/pkg/pen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger keeps Info messages so tests can count lifecycle logs.
type recordingLogger struct {
	*logger.ZapLogger
	mu   sync.Mutex
	info []string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{ZapLogger: logger.NewNopLogger()}
}

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.info = append(l.info, message)
}

func (l *recordingLogger) count(message string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.info {
		if m == message {
			n++
		}
	}
	return n
}

type fixture struct {
	gw      *memory.Gateway
	cal     *calibration.Holder
	userId  uuid.UUID
	nb      *entity.Notebook
	pageIds []uuid.UUID
}

func newFixture(t *testing.T, pages int) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{gw: memory.NewGateway(), cal: calibration.NewHolder(), userId: uuid.New()}
	f.nb = &entity.Notebook{Id: uuid.New(), UserId: f.userId, Title: "Sketchbook"}
	for i := 0; i < pages; i++ {
		p := entity.NewPage(f.userId, "")
		require.NoError(t, f.gw.SavePage(ctx, p))
		f.nb.PageIds = append(f.nb.PageIds, p.Id)
	}
	require.NoError(t, f.gw.SaveNotebook(ctx, f.nb))
	f.pageIds = f.nb.PageIds
	return f
}

func (f *fixture) open(t *testing.T) *Session {
	t.Helper()
	s := New(f.userId, f.gw, f.cal, Options{Width: 200, Height: 150, GridSpacing: 30}, logger.NewNopLogger())
	require.NoError(t, s.Open(context.Background(), f.nb.Id, uuid.Nil))
	return s
}

func (f *fixture) storedStrokes(t *testing.T, pageId uuid.UUID) []ink.Stroke {
	page, err := f.gw.GetPage(context.Background(), pageId)
	require.NoError(t, err)
	require.NotNil(t, page)
	return page.Strokes
}

func packet(t *testing.T, typ pen.PacketType, x, y float64, pressure int) []byte {
	b, err := pen.Encode(typ, x, y, pressure)
	require.NoError(t, err)
	return b
}

func TestSession_PointerStroke(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	red := "#ff0000"
	width := 2.0
	_, err := s.Configure(Settings{Color: &red, Width: &width})
	require.NoError(t, err)

	for _, ev := range []struct {
		name string
		x, y float64
	}{{"down", 10, 10}, {"move", 20, 20}, {"move", 30, 25}, {"up", 0, 0}} {
		_, err := s.Pointer(ev.name, ev.x, ev.y)
		require.NoError(t, err)
	}

	st := s.State()
	require.Len(t, st.Strokes, 1)
	assert.Len(t, st.Strokes[0].Points, 3)
	assert.Equal(t, "#ff0000", st.Strokes[0].Color)
	assert.Equal(t, 2.0, st.Strokes[0].Width)
	assert.Equal(t, 1, st.PageIndex)

	_, err = s.Pointer("hover", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSession_ConfigureIsAllOrNothing(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	tool := "eraser"
	bad := "red"
	_, err := s.Configure(Settings{Tool: &tool, Color: &bad})

	assert.Error(t, err)
	assert.Equal(t, "pen", string(s.State().Tool))
}

func TestSession_TouchRequiresFinger(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	prevented, err := s.Touch("start", 5, 5)
	require.NoError(t, err)
	assert.False(t, prevented)

	finger := "finger"
	_, err = s.Configure(Settings{Tool: &finger})
	require.NoError(t, err)

	prevented, err = s.Touch("start", 5, 5)
	require.NoError(t, err)
	assert.True(t, prevented)
	_, _ = s.Touch("move", 8, 9)
	_, _ = s.Touch("end", 0, 0)

	assert.Len(t, s.State().Strokes, 1)
}

func TestSession_ZoomDirection(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	for i := 0; i < 10; i++ {
		_, _ = s.Zoom("out")
	}
	z, err := s.Zoom("out")
	require.NoError(t, err)
	assert.Equal(t, 0.5, z)

	_, err = s.Zoom("sideways")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestSession_PenStreamDrawsAndEmits(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	var events []Event
	cancel := s.Observe(func(e Event) { events = append(events, e) })
	defer cancel()

	s.Feed(packet(t, pen.PacketPenDown, 10, 20, 512))
	s.Feed(packet(t, pen.PacketPenMove, 15, 20, 512))
	s.Feed([]byte{byte(pen.PacketPenUp)})

	require.Len(t, events, 2)
	assert.Equal(t, EventStrokeData, events[0].Type)
	assert.Equal(t, EventStrokeEnd, events[1].Type)

	update := events[0].Data.(pen.StrokeUpdate)
	end := events[1].Data.(StrokeEnd)
	assert.Equal(t, update.StrokeID, end.StrokeID)

	strokes := s.State().Strokes
	require.Len(t, strokes, 1)
	require.Len(t, strokes[0].Points, 2)
	assert.InDelta(t, 0.5, strokes[0].Points[0].Pressure, 1e-9)
}

func TestSession_MalformedPacketIsDropped(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	s.Feed([]byte{0x01, 0x00})
	s.Feed(nil)

	assert.Empty(t, s.State().Strokes)
}

func TestSession_NavigationEndsOpenPenStroke(t *testing.T) {
	f := newFixture(t, 2)
	s := f.open(t)

	var ended int
	s.Observe(func(e Event) {
		if e.Type == EventStrokeEnd {
			ended++
		}
	})

	s.Feed(packet(t, pen.PacketPenDown, 1, 1, 100))
	st, err := s.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ended)
	assert.Equal(t, 2, st.PageIndex)
	assert.Len(t, f.storedStrokes(t, f.pageIds[0]), 1)
	assert.Empty(t, st.Strokes)
}

func TestSession_CalibrationByPen(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	var steps []CalibrationStep
	s.Observe(func(e Event) {
		if e.Type == EventCalibration {
			steps = append(steps, e.Data.(CalibrationStep))
		}
	})

	first, err := s.StartCalibration(nil)
	require.NoError(t, err)
	require.NotNil(t, first.Target)
	assert.Equal(t, 4, first.Total)
	assert.True(t, s.State().Calibrating)

	for _, tg := range calibration.DefaultTargets() {
		s.Feed(packet(t, pen.PacketPenMove, tg.X+6, tg.Y+6, 512))
		s.Feed(packet(t, pen.PacketPenDown, tg.X+5, tg.Y+5, 512))
		s.Feed([]byte{byte(pen.PacketPenUp)})
	}

	require.Len(t, steps, 4)
	last := steps[3]
	assert.True(t, last.Done)
	require.NotNil(t, last.Result)

	got := f.cal.Get()
	assert.InDelta(t, -5, got.OffsetX, 1e-9)
	assert.InDelta(t, -5, got.OffsetY, 1e-9)
	assert.InDelta(t, 1, got.ScaleX, 1e-9)
	assert.Empty(t, s.State().Strokes, "calibration packets do not draw")
	assert.False(t, s.State().Calibrating)
}

func TestSession_CaptureWithoutProcedure(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)

	_, err := s.CaptureCalibration(1, 1)
	assert.ErrorIs(t, err, ErrNoCalibration)
}

func TestSession_SaveFlushesAndEncodes(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)
	_, _ = s.Pointer("down", 10, 10)
	_, _ = s.Pointer("up", 0, 0)

	var buf bytes.Buffer
	require.NoError(t, s.Save(context.Background(), &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Len(t, f.storedStrokes(t, f.pageIds[0]), 1)
}

func TestSession_CloseFlushesOnce(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)
	_, _ = s.Pointer("down", 10, 10)

	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	assert.Len(t, f.storedStrokes(t, f.pageIds[0]), 1)
	assert.ErrorIs(t, s.Open(context.Background(), f.nb.Id, uuid.Nil), ErrSessionClosed)
}

func TestManager_OwnershipAndRemove(t *testing.T) {
	f := newFixture(t, 1)
	m := NewManager(time.Hour, time.Hour, logger.NewNopLogger())
	s := f.open(t)
	m.Add(s)

	got, err := m.Get(s.Id(), f.userId)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(s.Id(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _ = s.Pointer("down", 3, 3)
	require.NoError(t, m.Remove(context.Background(), s.Id(), f.userId))
	assert.Equal(t, 0, m.Count())
	assert.Len(t, f.storedStrokes(t, f.pageIds[0]), 1)

	assert.ErrorIs(t, m.Remove(context.Background(), s.Id(), f.userId), ErrSessionNotFound)
}

func TestManager_ExpiryFlushesPage(t *testing.T) {
	f := newFixture(t, 1)
	m := NewManager(30*time.Millisecond, 10*time.Millisecond, logger.NewNopLogger())
	s := f.open(t)
	_, _ = s.Pointer("down", 3, 3)
	m.Add(s)

	assert.Eventually(t, func() bool {
		page, _ := f.gw.GetPage(context.Background(), f.pageIds[0])
		return page != nil && len(page.Strokes) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSession_ClosedSessionRefusesPenInput(t *testing.T) {
	f := newFixture(t, 1)
	s := f.open(t)
	require.NoError(t, s.Close(context.Background()))

	assert.ErrorIs(t, s.Feed(packet(t, pen.PacketPenDown, 10, 20, 512)), ErrSessionClosed)
	assert.ErrorIs(t, s.Feed(packet(t, pen.PacketPenMove, 15, 20, 512)), ErrSessionClosed)
	assert.ErrorIs(t, s.Feed([]byte{byte(pen.PacketPenUp)}), ErrSessionClosed)
	s.FlushIfDue()
	s.EndPenStroke()

	assert.Empty(t, s.State().Strokes)
	assert.Empty(t, f.storedStrokes(t, f.pageIds[0]))
}

func TestSession_CloseOnPageDeletedElsewhere(t *testing.T) {
	f := newFixture(t, 2)
	s := f.open(t)
	_, _ = s.Pointer("down", 3, 3)
	require.NoError(t, f.gw.DeletePage(context.Background(), f.pageIds[0]))

	err := s.Close(context.Background())

	assert.ErrorIs(t, err, navigator.ErrPageNotFound)
	assert.True(t, s.Closed())
	page, err := f.gw.GetPage(context.Background(), f.pageIds[0])
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestManager_TouchKeepsPenOnlySessionAlive(t *testing.T) {
	f := newFixture(t, 1)
	m := NewManager(80*time.Millisecond, 10*time.Millisecond, logger.NewNopLogger())
	s := f.open(t)
	m.Add(s)

	require.NoError(t, s.Feed(packet(t, pen.PacketPenDown, 1, 1, 512)))
	for i := 0; i < 10; i++ {
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, m.Touch(s.Id(), f.userId))
		require.NoError(t, s.Feed(packet(t, pen.PacketPenMove, float64(i+2), 1, 512)))
	}
	assert.Equal(t, 1, m.Count())
	assert.False(t, s.Closed())

	assert.Eventually(t, s.Closed, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, m.Touch(s.Id(), f.userId), ErrSessionNotFound)
	assert.ErrorIs(t, s.Feed(packet(t, pen.PacketPenMove, 50, 50, 512)), ErrSessionClosed)

	strokes := f.storedStrokes(t, f.pageIds[0])
	require.Len(t, strokes, 1)
	assert.Len(t, strokes[0].Points, 11)
}

func TestManager_ExplicitRemoveClosesOnce(t *testing.T) {
	f := newFixture(t, 1)
	rec := newRecordingLogger()
	m := NewManager(time.Hour, time.Hour, rec)
	s := f.open(t)
	m.Add(s)

	require.NoError(t, m.Remove(context.Background(), s.Id(), f.userId))

	assert.Equal(t, 0, rec.count("Session closed"))
}

func TestManager_RemoveForgetsSessionOnDeletedPage(t *testing.T) {
	f := newFixture(t, 2)
	m := NewManager(time.Hour, time.Hour, logger.NewNopLogger())
	s := f.open(t)
	m.Add(s)
	require.NoError(t, f.gw.DeletePage(context.Background(), f.pageIds[0]))

	err := m.Remove(context.Background(), s.Id(), f.userId)

	assert.ErrorIs(t, err, navigator.ErrPageNotFound)
	assert.Equal(t, 0, m.Count())
}

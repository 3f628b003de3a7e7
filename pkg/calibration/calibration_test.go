package calibration

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibration_IdentityApply(t *testing.T) {
	x, y := Identity().Apply(12.5, -3)
	assert.Equal(t, 12.5, x)
	assert.Equal(t, -3.0, y)
}

func TestCalibration_Apply(t *testing.T) {
	cal := Calibration{OffsetX: 10, OffsetY: 20, ScaleX: 2, ScaleY: 3}
	x, y := cal.Apply(1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 23.0, y)

	cal = Calibration{ScaleX: 1, ScaleY: 1, Rotation: math.Pi / 2}
	x, y = cal.Apply(1, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}

func TestHolder_SetPartialAndReset(t *testing.T) {
	h := NewHolder()
	offset := 4.0

	got := h.Set(Partial{OffsetX: &offset})

	assert.Equal(t, 4.0, got.OffsetX)
	assert.Equal(t, 1.0, got.ScaleX)
	assert.Equal(t, got, h.Get())

	h.Reset()
	assert.Equal(t, Identity(), h.Get())
}

func TestHolder_ConcurrentAccess(t *testing.T) {
	h := NewHolder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(v float64) {
			defer wg.Done()
			h.Set(Partial{OffsetY: &v})
		}(float64(i))
		go func() {
			defer wg.Done()
			_ = h.Get()
		}()
	}
	wg.Wait()
}

func TestProcedure_OffsetOnly(t *testing.T) {
	p, err := NewProcedure(DefaultTargets())
	require.NoError(t, err)

	for {
		target, _, ok := p.Current()
		if !ok {
			break
		}
		_, err := p.Capture(target.X+5, target.Y+5)
		require.NoError(t, err)
	}

	_, err = p.Capture(0, 0)
	assert.ErrorIs(t, err, ErrComplete)

	cal, err := p.Result()
	require.NoError(t, err)
	assert.InDelta(t, -5, cal.OffsetX, 1e-9)
	assert.InDelta(t, -5, cal.OffsetY, 1e-9)
	assert.InDelta(t, 1, cal.ScaleX, 1e-9)
	assert.InDelta(t, 1, cal.ScaleY, 1e-9)
	assert.Equal(t, 0.0, cal.Rotation)
}

func TestProcedure_IncompleteAndTooFew(t *testing.T) {
	_, err := NewProcedure([]Target{{1, 1}})
	assert.ErrorIs(t, err, ErrTooFewTargets)

	p, err := NewProcedure(DefaultTargets())
	require.NoError(t, err)
	done, err := p.Capture(0, 0)
	require.NoError(t, err)
	assert.False(t, done)

	_, err = p.Result()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestEstimate_HalfScale(t *testing.T) {
	targets := DefaultTargets()
	observed := make([]Target, len(targets))
	for i, tg := range targets {
		observed[i] = Target{X: tg.X / 2, Y: tg.Y / 2}
	}

	cal, err := Estimate(targets, observed)
	require.NoError(t, err)
	assert.InDelta(t, 2, cal.ScaleX, 1e-9)
	assert.Equal(t, cal.ScaleX, cal.ScaleY)
}

func TestEstimate_SkipsDegenerateSamples(t *testing.T) {
	targets := []Target{{0, 0}, {100, 0}, {100, 100}}
	observed := []Target{{0, 0}, {0, 0}, {50, 50}}

	cal, err := Estimate(targets, observed)
	require.NoError(t, err)
	// Only the third pair counts: 141.42 / 70.71.
	assert.InDelta(t, 2, cal.ScaleX, 1e-9)
}

func TestEstimate_AllDegenerateKeepsUnitScale(t *testing.T) {
	targets := []Target{{0, 0}, {10, 0}}
	observed := []Target{{3, 3}, {3, 3}}

	cal, err := Estimate(targets, observed)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cal.ScaleX)
	assert.InDelta(t, 2, cal.OffsetX, 1e-9)
}

func TestEstimate_CountMismatch(t *testing.T) {
	_, err := Estimate(DefaultTargets(), []Target{{0, 0}})
	assert.ErrorIs(t, err, ErrSampleCount)
}

package calibration

import (
	"errors"
	"math"
)

var (
	ErrTooFewTargets = errors.New("calibration needs at least two targets")
	ErrIncomplete    = errors.New("calibration procedure is not complete")
	ErrSampleCount   = errors.New("observed point count does not match targets")
	ErrComplete      = errors.New("every calibration target has been captured")
)

// minObservedDistance below which a scale sample is ignored.
const minObservedDistance = 1e-9

// Target is an on-screen point the user is asked to touch with the pen.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultTargets are the four corners of the calibration rectangle.
func DefaultTargets() []Target {
	return []Target{{50, 50}, {300, 50}, {300, 200}, {50, 200}}
}

// Procedure walks through each target in order, capturing one raw observed point per target.
type Procedure struct {
	targets  []Target
	observed []Target
}

func NewProcedure(targets []Target) (*Procedure, error) {
	if len(targets) < 2 {
		return nil, ErrTooFewTargets
	}
	t := make([]Target, len(targets))
	copy(t, targets)
	return &Procedure{targets: t, observed: make([]Target, 0, len(t))}, nil
}

// Current returns the target awaiting capture and its 0-based index.
// ok is false once every target has been captured.
func (p *Procedure) Current() (target Target, index int, ok bool) {
	i := len(p.observed)
	if i >= len(p.targets) {
		return Target{}, i, false
	}
	return p.targets[i], i, true
}

// Capture records the raw point observed for the current target and reports whether the procedure is done.
func (p *Procedure) Capture(rawX, rawY float64) (bool, error) {
	if p.Done() {
		return true, ErrComplete
	}
	p.observed = append(p.observed, Target{X: rawX, Y: rawY})
	return p.Done(), nil
}

func (p *Procedure) Done() bool {
	return len(p.observed) == len(p.targets)
}

func (p *Procedure) Total() int {
	return len(p.targets)
}

// Result estimates the calibration from the captured points.
func (p *Procedure) Result() (Calibration, error) {
	if !p.Done() {
		return Calibration{}, ErrIncomplete
	}
	return Estimate(p.targets, p.observed)
}

// Estimate computes translation and uniform scale from target/observed pairs.
//
// Offsets are the mean of (target - observed). Scale is the mean ratio of target to observed
// distance from the first point, over every other point whose observed distance is not ~0.
// Rotation is not estimated and stays 0.
func Estimate(targets, observed []Target) (Calibration, error) {
	if len(targets) < 2 {
		return Calibration{}, ErrTooFewTargets
	}
	if len(observed) != len(targets) {
		return Calibration{}, ErrSampleCount
	}

	cal := Identity()
	n := float64(len(targets))
	for i := range targets {
		cal.OffsetX += targets[i].X - observed[i].X
		cal.OffsetY += targets[i].Y - observed[i].Y
	}
	cal.OffsetX /= n
	cal.OffsetY /= n

	var sum float64
	var samples int
	for i := 1; i < len(targets); i++ {
		od := distance(observed[0], observed[i])
		if od < minObservedDistance {
			continue
		}
		sum += distance(targets[0], targets[i]) / od
		samples++
	}
	if samples > 0 {
		cal.ScaleX = sum / float64(samples)
		cal.ScaleY = cal.ScaleX
	}
	return cal, nil
}

func distance(a, b Target) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

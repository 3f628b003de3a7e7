// Package calibration maps raw pen-sensor coordinates to surface coordinates and
// estimates that mapping from a guided capture procedure.
package calibration

import (
	"math"
	"sync"
)

// Calibration is an affine rotate -> scale -> translate transform. Rotation is in radians.
type Calibration struct {
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"`
}

func Identity() Calibration {
	return Calibration{ScaleX: 1, ScaleY: 1}
}

// Apply maps a raw point to surface space.
func (c Calibration) Apply(x, y float64) (float64, float64) {
	sin, cos := math.Sincos(c.Rotation)
	rx := x*cos - y*sin
	ry := x*sin + y*cos
	return rx*c.ScaleX + c.OffsetX, ry*c.ScaleY + c.OffsetY
}

// Partial carries only the fields a caller wants to change.
type Partial struct {
	OffsetX  *float64 `json:"offset_x,omitempty"`
	OffsetY  *float64 `json:"offset_y,omitempty"`
	ScaleX   *float64 `json:"scale_x,omitempty"`
	ScaleY   *float64 `json:"scale_y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// Merge returns c with every non-nil field of p applied.
func (c Calibration) Merge(p Partial) Calibration {
	if p.OffsetX != nil {
		c.OffsetX = *p.OffsetX
	}
	if p.OffsetY != nil {
		c.OffsetY = *p.OffsetY
	}
	if p.ScaleX != nil {
		c.ScaleX = *p.ScaleX
	}
	if p.ScaleY != nil {
		c.ScaleY = *p.ScaleY
	}
	if p.Rotation != nil {
		c.Rotation = *p.Rotation
	}
	return c
}

// Provider is what the pen decoder reads the active calibration from.
type Provider interface {
	Get() Calibration
}

// Holder is the single process-wide calibration, passed explicitly to whoever needs it.
type Holder struct {
	mu  sync.RWMutex
	cal Calibration
}

func NewHolder() *Holder {
	return &Holder{cal: Identity()}
}

func (h *Holder) Get() Calibration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cal
}

// Set applies a partial update and returns the resulting calibration.
func (h *Holder) Set(p Partial) Calibration {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cal = h.cal.Merge(p)
	return h.cal
}

func (h *Holder) Replace(c Calibration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cal = c
}

// Reset restores the identity transform.
func (h *Holder) Reset() {
	h.Replace(Identity())
}

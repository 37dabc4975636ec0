// Package viewport implements the pan and zoom camera of a diagram.
//
// The [Controller] owns the pan offset (screen pixels) and zoom scale of one
// diagram instance. Panning follows raw screen deltas because the pan offset
// is itself applied after scaling. Ctrl+wheel zooms toward the cursor and a
// plain wheel pans. [Controller.AutoFit] centers content once; any manual
// pan, zoom or [Controller.Set] call latches the fit so it never overrides
// the user.
package viewport

import (
	"math"

	"github.com/zenui/zendiagram/pkg/geom"
	"github.com/zenui/zendiagram/pkg/input"
)

// Zoom and fit constants.
const (
	MinScale   = 0.1
	MaxScale   = 5.0
	ZoomFactor = 0.001
	FitPadding = 100.0
)

// State is the controller's interaction state.
type State int

const (
	// Idle means the pointer is not panning.
	Idle State = iota
	// Panning means a background drag is moving the camera.
	Panning
)

func (s State) String() string {
	if s == Panning {
		return "panning"
	}
	return "idle"
}

// Controller is the viewport state machine. The zero value is not usable;
// call New.
type Controller struct {
	pos    geom.Point
	scale  float64
	state  State
	last   geom.Point
	fitted bool

	onChange func(geom.Transform)
}

// New returns an idle controller at the identity transform. onChange, when
// non-nil, is called after every change of pan or scale.
func New(onChange func(geom.Transform)) *Controller {
	return &Controller{scale: 1, onChange: onChange}
}

// Transform returns the current pan and scale.
func (c *Controller) Transform() geom.Transform {
	return geom.Transform{Pan: c.pos, Scale: c.scale}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// HasFittedView reports whether the one-shot fit has been consumed.
func (c *Controller) HasFittedView() bool { return c.fitted }

// ResetFit re-arms the one-shot fit, as on a fresh mount.
func (c *Controller) ResetFit() { c.fitted = false }

// PointerDown starts panning when the middle or right button goes down on
// the background. It reports whether panning started.
func (c *Controller) PointerDown(e input.Pointer, onBackground bool) bool {
	if !onBackground || (e.Button != input.ButtonMiddle && e.Button != input.ButtonRight) {
		return false
	}
	c.state = Panning
	c.last = e.Pos
	return true
}

// PointerMove pans by the raw screen delta since the previous event.
func (c *Controller) PointerMove(p geom.Point) {
	if c.state != Panning || !p.IsFinite() {
		return
	}
	delta := p.Sub(c.last)
	c.last = p
	if delta == (geom.Point{}) {
		return
	}
	c.fitted = true
	c.update(c.pos.Add(delta), c.scale)
}

// PointerUp ends panning. Hosts call it for button releases anywhere in the
// document so drags ending outside the canvas still finish.
func (c *Controller) PointerUp() { c.state = Idle }

// Wheel zooms toward the cursor when ctrl is held and pans otherwise.
func (c *Controller) Wheel(e input.Wheel) {
	if !e.Delta.IsFinite() || !e.Pos.IsFinite() {
		return
	}
	c.fitted = true
	if !e.Mods.Has(input.ModCtrl) {
		c.update(c.pos.Sub(e.Delta), c.scale)
		return
	}
	old := c.scale
	next := geom.Clamp(old-e.Delta.Y*ZoomFactor, MinScale, MaxScale)
	// Keep the logical point under the cursor fixed.
	pos := e.Pos.Sub(e.Pos.Sub(c.pos).Div(old).Mul(next))
	c.update(pos, next)
}

// AutoFit centers content in a container of the given size with
// FitPadding pixels on every side, never zooming in past 1. It runs at most
// once; it reports whether it changed the view. Empty content or containers
// leave the fit armed.
func (c *Controller) AutoFit(content geom.Rect, container geom.Size) bool {
	if c.fitted || content.Empty() || !content.IsFinite() || container.IsZero() {
		return false
	}
	w := content.Width + 2*FitPadding
	h := content.Height + 2*FitPadding
	scale := math.Min(math.Min(container.Width/w, container.Height/h), 1)
	scale = math.Max(scale, MinScale)

	pos := geom.Pt(
		(container.Width-content.Width*scale)/2-content.X*scale,
		(container.Height-content.Height*scale)/2-content.Y*scale,
	)
	c.fitted = true
	c.update(pos, scale)
	return true
}

// Set moves the camera programmatically. The zoom is clamped; non-finite
// components keep their current value. Set consumes the one-shot fit.
func (c *Controller) Set(x, y, zoom float64) {
	pos, scale := c.pos, c.scale
	if geom.Finite(x) {
		pos.X = x
	}
	if geom.Finite(y) {
		pos.Y = y
	}
	if geom.Finite(zoom) {
		scale = geom.Clamp(zoom, MinScale, MaxScale)
	}
	c.fitted = true
	c.update(pos, scale)
}

// ScreenToLogical maps a screen point into diagram space.
func (c *Controller) ScreenToLogical(p geom.Point) geom.Point { return c.Transform().ToLogical(p) }

// LogicalToScreen maps a diagram point onto the screen.
func (c *Controller) LogicalToScreen(p geom.Point) geom.Point { return c.Transform().ToScreen(p) }

func (c *Controller) update(pos geom.Point, scale float64) {
	if pos == c.pos && scale == c.scale {
		return
	}
	c.pos, c.scale = pos, scale
	if c.onChange != nil {
		c.onChange(c.Transform())
	}
}

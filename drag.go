package gooey

import (
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultMaxDragImpulse caps the drag impulse applied to a single body per
// tick.
const DefaultMaxDragImpulse = 30.0

// DragModel maps a body's velocity to an opposing impulse. Drag grows with
// the cube of speed: impulse = -v * |v|² * area * Constant.
//
// MaxImpulse bounds the impulse magnitude; zero means unbounded. Non-finite
// results are reported as zero so one bad tick cannot destabilize the space.
type DragModel struct {
	Constant        float64
	AngularConstant float64
	MaxImpulse      float64
}

// Impulse returns the linear drag impulse for velocity v through a
// cross-section of the given area.
func (d DragModel) Impulse(v Vec2, area float64) Vec2 {
	imp := v.Neg().Mult(v.LengthSq() * area * d.Constant)
	if !finiteVec(imp) {
		return Vec2{}
	}
	if d.MaxImpulse > 0 {
		imp = imp.Clamp(d.MaxImpulse)
	}
	return imp
}

// AngularImpulse returns the spin drag for angular velocity w (radians/s).
func (d DragModel) AngularImpulse(w, area float64) float64 {
	imp := -w * math.Abs(w) * math.Abs(w) * area * d.AngularConstant
	if math.IsNaN(imp) || math.IsInf(imp, 0) {
		return 0
	}
	if d.MaxImpulse > 0 {
		imp = math.Max(-d.MaxImpulse, math.Min(d.MaxImpulse, imp))
	}
	return imp
}

// Apply applies drag to body at its center of gravity.
func (d DragModel) Apply(body *cp.Body, area float64) {
	imp := d.Impulse(body.Velocity(), area)
	if imp != (Vec2{}) {
		body.ApplyImpulseAtWorldPoint(imp, body.Position())
	}
	if d.AngularConstant == 0 {
		return
	}
	if spin := d.AngularImpulse(body.AngularVelocity(), area); spin != 0 && body.Moment() > 0 {
		body.SetAngularVelocity(body.AngularVelocity() + spin/body.Moment())
	}
}

func finiteVec(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

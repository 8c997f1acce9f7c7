package gooey

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// PushState is the phase of the bell's pulse.
type PushState uint8

const (
	PushIdle    PushState = iota // not animating
	PushOpening                  // animating toward any pose other than the closed one
	PushClosing                  // animating toward the closed pose
)

// String returns a short name for the push state.
func (s PushState) String() string {
	switch s {
	case PushIdle:
		return "idle"
	case PushOpening:
		return "opening"
	case PushClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// PropulsionPower converts a step in the bell's vertical fraction into an
// impulse magnitude along the creature's forward axis. Closing pushes
// forward; opening pushes backward, reduced by BackpushFraction, so a
// symmetric pulse still nets forward motion. The result is clamped to
// MaxImpulse and is zero for a non-finite input.
func PropulsionPower(area, vdiff float64, state PushState, t BellTweaks) float64 {
	var power float64
	switch state {
	case PushClosing:
		power = area * vdiff * t.PushFactor
	case PushOpening:
		power = -area * vdiff * t.PushFactor * t.BackpushFraction
	default:
		return 0
	}
	if math.IsNaN(power) || math.IsInf(power, 0) {
		return 0
	}
	if t.MaxImpulse > 0 {
		power = cp.Clamp(power, -t.MaxImpulse, t.MaxImpulse)
	}
	return power
}

// SteeringOffset returns how far to the left of the center of mass (negative
// is right) the propulsion impulse should be applied to turn by angleErr
// degrees. Below SteerThreshold the offset fades linearly to zero so the
// creature does not swing past its target heading.
func SteeringOffset(radius, angleErr float64, t BellTweaks) float64 {
	if math.IsNaN(angleErr) {
		return 0
	}
	offset := radius * t.RotationOffsetPercentRadius
	if angleErr > 0 {
		offset = -offset
	}
	if abs := math.Abs(angleErr); t.SteerThreshold > 0 && abs < t.SteerThreshold {
		offset *= abs / t.SteerThreshold
	}
	return offset
}

// Bell is the locomotion part: a pulsing mesh whose vertical animation
// fraction is differentiated into impulses on the creature's anchor. The
// bell's collision shape is the anchor's circle, sized from the live mesh.
type Bell struct {
	c      *Creature
	anim   *MeshAnimator
	tweaks BellTweaks
	name   string
	image  string

	state    PushState
	prevFrac float64
	radius   float64

	lastImpulse Vec2
	lastOffset  float64
}

// NewBell attaches a bell driven by anim to c. The bell's first vertex is the
// texture point the creature rotates about. The creature's mass is set from
// the bell's density and the hemisphere its radius describes, and the
// animation is started if it has enough poses.
func NewBell(c *Creature, anim *MeshAnimator, tweaks BellTweaks) (*Bell, error) {
	mesh := anim.Mesh()
	if mesh == nil || mesh.Len() < 3 {
		n := 0
		if mesh != nil {
			n = mesh.Len()
		}
		return nil, fmt.Errorf("bell mesh has %d vertices: %w", n, ErrInsufficientData)
	}
	if tweaks.ClosedStep == "" {
		tweaks.ClosedStep = DefaultBellTweaks().ClosedStep
	}

	b := &Bell{c: c, anim: anim, tweaks: tweaks}
	x, y := mesh.XY(0)
	c.centering = Vec2{X: -x, Y: -y}
	c.drag.Constant = tweaks.DragConstant
	c.bell = b
	b.RefreshShape()
	b.updateMass()

	if err := anim.StartAnimation(); err != nil {
		if !errors.Is(err, ErrInvalidConfiguration) {
			return nil, err
		}
		Logger().Info("bell animation not started", "creature", c.id, "error", err)
	}
	return b, nil
}

// Kind returns PartBell.
func (b *Bell) Kind() PartKind { return PartBell }

// Name returns the part's name.
func (b *Bell) Name() string { return b.name }

// Image returns the texture key the mesh is drawn with.
func (b *Bell) Image() string { return b.image }

// Animator returns the animator driving the bell.
func (b *Bell) Animator() *MeshAnimator { return b.anim }

// Mesh returns the live mesh in texture space.
func (b *Bell) Mesh() *VertexBuffer { return b.anim.Mesh() }

// Indices returns the mesh's render indices.
func (b *Bell) Indices() []uint16 { return b.anim.Indices() }

// Transform returns the creature's texture-to-world transform.
func (b *Bell) Transform() Affine { return b.c.RenderTransform() }

// State returns the current push state.
func (b *Bell) State() PushState { return b.state }

// Radius returns the scaled bell radius computed by the last RefreshShape.
func (b *Bell) Radius() float64 { return b.radius }

// BellTweaks returns the bell's tuning.
func (b *Bell) BellTweaks() BellTweaks { return b.tweaks }

// LastImpulse returns the most recent propulsion impulse and the steering
// offset it was applied at.
func (b *Bell) LastImpulse() (Vec2, float64) { return b.lastImpulse, b.lastOffset }

// RefreshShape recomputes the bell radius from the live mesh and the
// creature's scale, resizes the anchor circle, recomputes its moment, and
// updates the cross-sectional area. It returns the area.
func (b *Bell) RefreshShape() float64 {
	r := b.anim.Mesh().RightmostX(b.c.centering.X) * b.c.scale
	r = max(r, 1)
	b.radius = r
	if circle, ok := b.c.shape.Class.(*cp.Circle); ok {
		circle.SetRadius(r)
	}
	b.c.body.SetMoment(cp.MomentForCircle(b.c.body.Mass(), 0, r, Vec2{}))
	b.c.crossArea = math.Pi * r * r
	return b.c.crossArea
}

// updateMass sets the creature's mass to density times the volume of the
// hemisphere the bell describes.
func (b *Bell) updateMass() {
	volume := b.c.crossArea * b.radius * 2 / 3
	b.c.SetMass(b.tweaks.Density * volume)
}

// AdvanceAnimation moves the bell's animation clock forward by dt and feeds
// the vertical fraction into OnVerticalFraction.
func (b *Bell) AdvanceAnimation(dt float64) {
	tick := b.anim.Advance(dt)
	if tick.StepChanged {
		b.prevFrac = 0
		b.updateState()
	}
	if !b.anim.Running() && !tick.Completed {
		b.state = PushIdle
		return
	}
	b.OnVerticalFraction(tick.Vertical)
}

func (b *Bell) updateState() {
	switch {
	case !b.anim.Running():
		b.state = PushIdle
	case b.anim.StepName(b.anim.Step()) == b.tweaks.ClosedStep:
		b.state = PushClosing
	default:
		b.state = PushOpening
	}
}

// OnVerticalFraction applies the impulse for the change in vertical fraction
// since the previous call. Non-increasing fractions are skipped, so an
// animator reset never produces a reverse impulse.
func (b *Bell) OnVerticalFraction(frac float64) {
	vdiff := frac - b.prevFrac
	b.prevFrac = frac
	if !(vdiff > 0) {
		return
	}

	area := b.RefreshShape()
	power := PropulsionPower(area, vdiff, b.state, b.tweaks)
	if power == 0 {
		return
	}

	offset := 0.0
	if angle, throttle, ok := b.c.Orienting(); ok {
		offset = SteeringOffset(b.radius, AngleDiff(angle, b.c.Angle()), b.tweaks) * throttle
	}

	body := b.c.body
	rot := body.Rotation()
	imp := rot.Mult(power)
	at := body.Position().Add(rot.Perp().Mult(offset))
	body.ApplyImpulseAtWorldPoint(imp, at)
	b.lastImpulse = imp
	b.lastOffset = offset
}

// AdjustTweak sets one bell tweak by name. Density changes the creature's
// mass and drag changes its drag model.
func (b *Bell) AdjustTweak(name string, v float64) error {
	if err := b.tweaks.Set(name, v); err != nil {
		return err
	}
	switch name {
	case "density":
		b.updateMass()
	case "drag_constant":
		b.c.drag.Constant = v
	}
	return nil
}

// Tweaks returns the bell's tweak values by name.
func (b *Bell) Tweaks() map[string]float64 { return b.tweaks.Values() }

// Bind is a no-op: the bell's shape belongs to the creature's anchor.
func (b *Bell) Bind(*Space) {}

// Unbind is a no-op.
func (b *Bell) Unbind(*Space) {}

// Translate is a no-op: the bell mesh lives in texture space.
func (b *Bell) Translate(Vec2) {}

// Update reports ErrUnstable if the live mesh has gone non-finite.
func (b *Bell) Update() error {
	data := b.anim.Mesh().Data
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bell mesh: %w", ErrUnstable)
		}
	}
	return nil
}

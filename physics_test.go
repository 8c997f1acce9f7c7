package gooey

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{185, -175},
		{-185, 175},
		{360, 0},
		{0, 0},
		{180, 180},
		{-180, 180},
		{540, 180},
		{-721, -1},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if math.Signbit(got) && got == 0 {
			t.Errorf("NormalizeAngle(%v) returned negative zero", tt.in)
		}
	}
	for deg := -1000.0; deg <= 1000; deg += 7.3 {
		if got := NormalizeAngle(deg); got <= -180 || got > 180 {
			t.Errorf("NormalizeAngle(%v) = %v outside (-180, 180]", deg, got)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	if got := AngleDiff(170, -170); got != -20 {
		t.Errorf("AngleDiff(170, -170) = %v, want -20", got)
	}
	if got := AngleDiff(-170, 170); got != 20 {
		t.Errorf("AngleDiff(-170, 170) = %v, want 20", got)
	}
}

func TestDragImpulse(t *testing.T) {
	tests := []struct {
		name string
		drag DragModel
		v    Vec2
		area float64
		want Vec2
	}{
		{"opposes", DragModel{Constant: 0.01}, Vec2{X: 10}, 1, Vec2{X: -10}},
		{"cubic", DragModel{Constant: 0.01}, Vec2{Y: -20}, 0.5, Vec2{Y: 40}},
		{"clamped", DragModel{Constant: 0.01, MaxImpulse: 3}, Vec2{X: 10}, 1, Vec2{X: -3}},
		{"at rest", DragModel{Constant: 0.01}, Vec2{}, 1, Vec2{}},
		{"non-finite", DragModel{Constant: 0.01}, Vec2{X: math.Inf(1)}, 1, Vec2{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.drag.Impulse(tt.v, tt.area)
			if !approxEqual(got.X, tt.want.X, 1e-9) || !approxEqual(got.Y, tt.want.Y, 1e-9) {
				t.Errorf("Impulse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDragAngular(t *testing.T) {
	d := DragModel{AngularConstant: 0.5, MaxImpulse: 100}
	if got := d.AngularImpulse(2, 1); got != -4 {
		t.Errorf("AngularImpulse(2) = %v, want -4", got)
	}
	if got := d.AngularImpulse(-2, 1); got != 4 {
		t.Errorf("AngularImpulse(-2) = %v, want 4", got)
	}

	for _, w0 := range []float64{2, -2} {
		body := cp.NewBody(1, 2)
		body.SetAngularVelocity(w0)
		d.Apply(body, 1)
		if w := body.AngularVelocity(); w != 0 {
			t.Errorf("angular velocity from %v = %v, want 0", w0, w)
		}
	}

	weak := DragModel{AngularConstant: 0.01}
	for _, w := range []float64{3, -3, 0.5, -0.5} {
		if imp := weak.AngularImpulse(w, 1); imp*w >= 0 {
			t.Errorf("AngularImpulse(%v) = %v does not oppose the spin", w, imp)
		}
	}
}

func TestSpaceAddRemoveIdempotent(t *testing.T) {
	s := NewSpace()
	a := cp.NewBody(1, 1)
	b := cp.NewBody(1, 1)
	shape := cp.NewCircle(a, 1, Vec2{})
	spring := cp.NewDampedSpring(a, b, Vec2{}, Vec2{}, 1, 1, 1)

	s.Add(a, b, shape, spring)
	s.Add(a, []*cp.Shape{shape}, []*cp.Constraint{spring})
	if got := s.Counts(); got != (SpaceCounts{Bodies: 2, Shapes: 1, Constraints: 1}) {
		t.Errorf("counts = %+v", got)
	}
	for _, obj := range []any{a, b, shape, spring} {
		if !s.Contains(obj) {
			t.Errorf("space missing %T", obj)
		}
	}

	s.Remove(spring, shape, a)
	s.Remove(spring, shape, a)
	if got := s.Counts(); got != (SpaceCounts{Bodies: 1}) {
		t.Errorf("counts after remove = %+v", got)
	}
}

func TestSpaceAddPanicsOnUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add(string) did not panic")
		}
	}()
	NewSpace().Add("body")
}

func TestSpaceCleanup(t *testing.T) {
	s := NewSpace()
	anchor := newAnchor(0, 0)
	s.Add(anchor)
	b := NewChainBuilder(anchor, DefaultMassWeighting())
	b.Bind(s)
	b.BuildChain(collinear(10, 20, 30), ChainConfig{MassTotal: 3, Radius: 2, Stiffness: 5, Damping: 1, LoopAround: true})
	s.Step(1.0 / 60)

	s.Cleanup()
	if got := s.Counts(); got != (SpaceCounts{}) {
		t.Errorf("counts after cleanup = %+v", got)
	}
	if s.Raw().StaticBody == nil {
		t.Error("static body removed")
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	body := newAnchor(30, -4)
	body.SetAngle(radians(35))
	offset := Vec2{X: 12, Y: -7}
	world := WorldPosOfOffset(body, offset)
	back := OffsetToPos(body, world)
	if !approxEqual(back.X, offset.X, 1e-9) || !approxEqual(back.Y, offset.Y, 1e-9) {
		t.Errorf("round trip = %v, want %v", back, offset)
	}
	if d := world.Distance(body.Position()); !approxEqual(d, offset.Length(), 1e-9) {
		t.Errorf("offset distance = %v, want %v", d, offset.Length())
	}
}

package gooey

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// Space wraps a physics space with variadic add/remove over bodies, shapes,
// and constraints. Adds and removes are idempotent per object, so parts can
// bind and unbind without tracking what is already registered.
type Space struct {
	raw *cp.Space
}

// NewSpace creates an empty space with no gravity. Bodies never sleep.
func NewSpace() *Space {
	return &Space{raw: cp.NewSpace()}
}

// Raw returns the underlying physics space.
func (s *Space) Raw() *cp.Space { return s.raw }

// Add registers each object with the space. Accepted types are *cp.Body,
// *cp.Shape, *cp.Constraint, and slices of those. nil entries are skipped.
func (s *Space) Add(objs ...any) {
	for _, obj := range objs {
		switch o := obj.(type) {
		case nil:
		case *cp.Body:
			if o != nil && !s.raw.ContainsBody(o) {
				s.raw.AddBody(o)
			}
		case *cp.Shape:
			if o != nil && !s.raw.ContainsShape(o) {
				s.raw.AddShape(o)
			}
		case *cp.Constraint:
			if o != nil && !s.raw.ContainsConstraint(o) {
				s.raw.AddConstraint(o)
			}
		case []*cp.Body:
			for _, b := range o {
				s.Add(b)
			}
		case []*cp.Shape:
			for _, sh := range o {
				s.Add(sh)
			}
		case []*cp.Constraint:
			for _, c := range o {
				s.Add(c)
			}
		default:
			panic(fmt.Sprintf("gooey: cannot add %T to space", obj))
		}
	}
}

// Remove unregisters each object. Objects not in the space are skipped.
// Constraints should be removed before the bodies they join.
func (s *Space) Remove(objs ...any) {
	for _, obj := range objs {
		switch o := obj.(type) {
		case nil:
		case *cp.Body:
			if o != nil && s.raw.ContainsBody(o) {
				s.raw.RemoveBody(o)
			}
		case *cp.Shape:
			if o != nil && s.raw.ContainsShape(o) {
				s.raw.RemoveShape(o)
			}
		case *cp.Constraint:
			if o != nil && s.raw.ContainsConstraint(o) {
				s.raw.RemoveConstraint(o)
			}
		case []*cp.Body:
			for _, b := range o {
				s.Remove(b)
			}
		case []*cp.Shape:
			for _, sh := range o {
				s.Remove(sh)
			}
		case []*cp.Constraint:
			for _, c := range o {
				s.Remove(c)
			}
		default:
			panic(fmt.Sprintf("gooey: cannot remove %T from space", obj))
		}
	}
}

// Contains reports whether obj is registered with the space.
func (s *Space) Contains(obj any) bool {
	switch o := obj.(type) {
	case *cp.Body:
		return o != nil && s.raw.ContainsBody(o)
	case *cp.Shape:
		return o != nil && s.raw.ContainsShape(o)
	case *cp.Constraint:
		return o != nil && s.raw.ContainsConstraint(o)
	}
	return false
}

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.raw.Step(dt)
}

// SpaceCounts is a census of the objects registered with a space.
type SpaceCounts struct {
	Bodies      int
	Shapes      int
	Constraints int
}

// Counts returns the number of bodies, shapes, and constraints in the space.
// The space's built-in static body is not counted.
func (s *Space) Counts() SpaceCounts {
	var c SpaceCounts
	s.raw.EachBody(func(*cp.Body) { c.Bodies++ })
	s.raw.EachShape(func(*cp.Shape) { c.Shapes++ })
	s.raw.EachConstraint(func(*cp.Constraint) { c.Constraints++ })
	return c
}

// Cleanup removes every constraint, then every shape, then every body.
func (s *Space) Cleanup() {
	var constraints []*cp.Constraint
	s.raw.EachConstraint(func(c *cp.Constraint) { constraints = append(constraints, c) })
	s.Remove(constraints)

	var shapes []*cp.Shape
	s.raw.EachShape(func(sh *cp.Shape) { shapes = append(shapes, sh) })
	s.Remove(shapes)

	var bodies []*cp.Body
	s.raw.EachBody(func(b *cp.Body) {
		if b != s.raw.StaticBody {
			bodies = append(bodies, b)
		}
	})
	s.Remove(bodies)
}

// WorldPosOfOffset returns the world position of offset, given in the body's
// frame as if its angle were zero.
func WorldPosOfOffset(body *cp.Body, offset Vec2) Vec2 {
	return body.LocalToWorld(offset)
}

// OffsetToPos returns pos expressed in the body's frame, suitable as a
// constraint anchor.
func OffsetToPos(body *cp.Body, pos Vec2) Vec2 {
	return body.WorldToLocal(pos)
}

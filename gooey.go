package gooey

import (
	"errors"

	"github.com/jakecoffman/cp"
)

// Vec2 is a 2D vector used for positions, offsets, velocities, and directions
// throughout the API. It is the physics engine's vector type so values flow
// between creatures and bodies without conversion.
type Vec2 = cp.Vector

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the bottom-left, with Y increasing upward (physics space).
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Sentinel errors. Callers match them with errors.Is; every error returned by
// this package wraps one of these.
var (
	// ErrDimensionMismatch is returned when poses of one animator disagree on
	// vertex count. The animator cannot be constructed.
	ErrDimensionMismatch = errors.New("gooey: dimension mismatch")

	// ErrInsufficientData is returned when a body part's authored geometry has
	// too few points to form a polygon. Callers treat the part as not yet
	// authored and skip it.
	ErrInsufficientData = errors.New("gooey: insufficient data")

	// ErrInvalidConfiguration is returned for malformed requests that are
	// treated as no-ops: starting an animation without enough poses, unknown
	// easing or tweak names, out-of-range tweak values.
	ErrInvalidConfiguration = errors.New("gooey: invalid configuration")

	// ErrUnstable is returned by per-tick updates when a body's state is no
	// longer finite, or when a creature's update panicked.
	ErrUnstable = errors.New("gooey: unstable simulation")
)

// CreatureID identifies a creature inside an Environment registry.
type CreatureID uint32

// PartKind distinguishes the body part variants a creature can be built from.
type PartKind uint8

const (
	PartBell  PartKind = iota // pulsing bell that propels the anchor body
	PartGooey                 // soft spring network trailing behind the anchor
)

// String returns the persisted name of the part kind.
func (k PartKind) String() string {
	switch k {
	case PartBell:
		return "bell"
	case PartGooey:
		return "gooey"
	default:
		return "unknown"
	}
}

// EventType identifies a creature lifecycle event.
type EventType uint8

const (
	EventCreatureAdded   EventType = iota // creature registered with an environment
	EventCreatureRemoved                  // creature destroyed and removed from the space
	EventCreatureWrapped                  // creature crossed a boundary and was teleported
	EventCreatureFault                    // creature's update failed; it was skipped this tick
)

// String returns a short human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventCreatureAdded:
		return "added"
	case EventCreatureRemoved:
		return "removed"
	case EventCreatureWrapped:
		return "wrapped"
	case EventCreatureFault:
		return "fault"
	default:
		return "unknown"
	}
}

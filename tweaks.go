package gooey

import (
	"fmt"
	"math"
)

// TweakMeta describes one user-adjustable tuning value: its persisted name,
// a title and description for UIs, and the accepted range.
type TweakMeta struct {
	Name        string
	Title       string
	Description string
	Min, Max    float64
}

// Check returns ErrInvalidConfiguration if v is outside [Min, Max].
func (m TweakMeta) Check(v float64) error {
	if math.IsNaN(v) || v < m.Min || v > m.Max {
		return fmt.Errorf("tweak %s = %v outside [%v, %v]: %w", m.Name, v, m.Min, m.Max, ErrInvalidConfiguration)
	}
	return nil
}

func findTweak(metas []TweakMeta, name string) (TweakMeta, error) {
	for _, m := range metas {
		if m.Name == name {
			return m, nil
		}
	}
	return TweakMeta{}, fmt.Errorf("unknown tweak %q: %w", name, ErrInvalidConfiguration)
}

// BellTweakMetas lists the bell tweaks in display order.
var BellTweakMetas = []TweakMeta{
	{"push_factor", "Push power", "How much the creature pushes with each pulse.", 0.02, 0.5},
	{"backpush_fraction", "Backwards push percentage", "How much the creature pushes backwards as the bell opens.", 0, 1},
	{"rotation_offset_percent_radius", "Rotation power", "How hard the creature turns.", 0.1, 1},
	{"density", "Mass", "How heavy the creature is.", 1e-6, 1e-4},
	{"drag_constant", "Drag", "How much drag the bell creates.", 1e-11, 1e-9},
	{"steer_threshold", "Steering falloff", "Heading error in degrees below which turning eases off.", 1, 180},
}

// GooeyTweakMetas lists the gooey body part tweaks in display order.
var GooeyTweakMetas = []TweakMeta{
	{"mass_fraction", "Mass fraction", "Mass as a fraction of the bell.", 0.01, 3},
	{"center_mass_fraction", "Center mass fraction", "The fraction of the part's mass located at the center.", 0.05, 0.95},
	{"outer_spring_stiffness", "Outer spring stiffness", "How stiff the perimeter springs are.", 0.1, 100},
	{"outer_spring_damping", "Outer spring damping", "The damping amount in the perimeter springs.", 0.1, 100},
	{"internal_spring_stiffness", "Internal spring stiffness", "How stiff the springs connecting the perimeter and interior are.", 0.1, 100},
	{"internal_spring_damping", "Internal spring damping", "The damping amount for springs connecting the perimeter and interior.", 0.1, 100},
	{"drag_constant", "Drag", "How much drag the part experiences.", 1e-7, 1e-5},
	{"spine_correction", "Spine correction", "How strongly the center is pulled back behind the bell.", 0, 1},
}

// BellTweaks tunes bell propulsion and steering.
type BellTweaks struct {
	PushFactor                  float64
	BackpushFraction            float64
	RotationOffsetPercentRadius float64
	Density                     float64
	DragConstant                float64
	// SteerThreshold is the heading error in degrees below which the
	// steering offset is attenuated toward zero.
	SteerThreshold float64
	// ClosedStep names the pose whose approach pushes the creature forward.
	ClosedStep string
	// MaxImpulse bounds a single propulsion impulse; zero means unbounded.
	MaxImpulse float64
}

// DefaultBellTweaks returns the default bell tuning.
func DefaultBellTweaks() BellTweaks {
	return BellTweaks{
		PushFactor:                  0.2,
		BackpushFraction:            0.8,
		RotationOffsetPercentRadius: 0.3,
		Density:                     1e-5,
		DragConstant:                1e-10,
		SteerThreshold:              45,
		ClosedStep:                  "closed",
		MaxImpulse:                  1e5,
	}
}

func (t *BellTweaks) field(name string) *float64 {
	switch name {
	case "push_factor":
		return &t.PushFactor
	case "backpush_fraction":
		return &t.BackpushFraction
	case "rotation_offset_percent_radius":
		return &t.RotationOffsetPercentRadius
	case "density":
		return &t.Density
	case "drag_constant":
		return &t.DragConstant
	case "steer_threshold":
		return &t.SteerThreshold
	}
	return nil
}

// Set assigns the tweak called name after checking its range.
func (t *BellTweaks) Set(name string, v float64) error {
	meta, err := findTweak(BellTweakMetas, name)
	if err != nil {
		return err
	}
	if err := meta.Check(v); err != nil {
		return err
	}
	*t.field(name) = v
	return nil
}

// Values returns every numeric tweak keyed by persisted name.
func (t BellTweaks) Values() map[string]float64 {
	out := make(map[string]float64, len(BellTweakMetas))
	for _, m := range BellTweakMetas {
		out[m.Name] = *t.field(m.Name)
	}
	return out
}

// BellTweaksFrom overlays values on the defaults. Missing names keep their
// default; unknown or out-of-range values are reported together.
func BellTweaksFrom(values map[string]float64) (BellTweaks, error) {
	t := DefaultBellTweaks()
	err := applyTweaks(values, BellTweakMetas, t.Set)
	return t, err
}

// GooeyTweaks tunes a gooey body part.
type GooeyTweaks struct {
	MassFraction            float64
	CenterMassFraction      float64
	OuterSpringStiffness    float64
	OuterSpringDamping      float64
	InternalSpringStiffness float64
	InternalSpringDamping   float64
	DragConstant            float64
	SpineCorrection         float64
}

// DefaultGooeyTweaks returns the default gooey tuning.
func DefaultGooeyTweaks() GooeyTweaks {
	return GooeyTweaks{
		MassFraction:            0.5,
		CenterMassFraction:      0.5,
		OuterSpringStiffness:    50,
		OuterSpringDamping:      15,
		InternalSpringStiffness: 50,
		InternalSpringDamping:   15,
		DragConstant:            1e-6,
		SpineCorrection:         0.05,
	}
}

func (t *GooeyTweaks) field(name string) *float64 {
	switch name {
	case "mass_fraction":
		return &t.MassFraction
	case "center_mass_fraction":
		return &t.CenterMassFraction
	case "outer_spring_stiffness":
		return &t.OuterSpringStiffness
	case "outer_spring_damping":
		return &t.OuterSpringDamping
	case "internal_spring_stiffness":
		return &t.InternalSpringStiffness
	case "internal_spring_damping":
		return &t.InternalSpringDamping
	case "drag_constant":
		return &t.DragConstant
	case "spine_correction":
		return &t.SpineCorrection
	}
	return nil
}

// Set assigns the tweak called name after checking its range.
func (t *GooeyTweaks) Set(name string, v float64) error {
	meta, err := findTweak(GooeyTweakMetas, name)
	if err != nil {
		return err
	}
	if err := meta.Check(v); err != nil {
		return err
	}
	*t.field(name) = v
	return nil
}

// Values returns every tweak keyed by persisted name.
func (t GooeyTweaks) Values() map[string]float64 {
	out := make(map[string]float64, len(GooeyTweakMetas))
	for _, m := range GooeyTweakMetas {
		out[m.Name] = *t.field(m.Name)
	}
	return out
}

// GooeyTweaksFrom overlays values on the defaults.
func GooeyTweaksFrom(values map[string]float64) (GooeyTweaks, error) {
	t := DefaultGooeyTweaks()
	err := applyTweaks(values, GooeyTweakMetas, t.Set)
	return t, err
}

// applyTweaks sets every value through set and logs the names that fall back
// to defaults.
func applyTweaks(values map[string]float64, metas []TweakMeta, set func(string, float64) error) error {
	var firstErr error
	for name, v := range values {
		if err := set(name, v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, m := range metas {
		if _, ok := values[m.Name]; !ok {
			Logger().Debug("missing tweak, using default", "tweak", m.Name)
		}
	}
	return firstErr
}

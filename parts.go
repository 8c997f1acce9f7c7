package gooey

import "fmt"

// BodyPart is a component attached to a creature's anchor body.
type BodyPart interface {
	// Bind registers the part's physics objects with space.
	Bind(space *Space)
	// Unbind removes them again.
	Unbind(space *Space)
	// Update runs once per physics tick after the space has stepped.
	Update() error
	// Translate moves the part by delta when the creature teleports.
	Translate(delta Vec2)
	Kind() PartKind
}

// MeshPart is implemented by parts that render a mesh.
type MeshPart interface {
	Mesh() *VertexBuffer
	Indices() []uint16
	// Transform maps mesh coordinates to world space.
	Transform() Affine
	Image() string
}

// TweakablePart is implemented by parts with named tuning values.
type TweakablePart interface {
	AdjustTweak(name string, v float64) error
	Tweaks() map[string]float64
}

// massListener is implemented by parts whose mass follows the creature's.
type massListener interface {
	creatureMassChanged(m float64)
}

var (
	_ BodyPart      = (*Bell)(nil)
	_ MeshPart      = (*Bell)(nil)
	_ TweakablePart = (*Bell)(nil)
	_ BodyPart      = (*GooeyPart)(nil)
	_ MeshPart      = (*GooeyPart)(nil)
	_ TweakablePart = (*GooeyPart)(nil)
	_ massListener  = (*GooeyPart)(nil)
)

// PartSpec is the construction payload for one body part kind. The set of
// kinds is closed: BellSpec and GooeySpec.
type PartSpec interface {
	Kind() PartKind
	isPartSpec()
}

// BellSpec builds a Bell.
type BellSpec struct {
	Name      string
	Image     string
	Animation AnimationData
	// ClosedStep names the pose whose approach pushes forward. Empty means
	// "closed".
	ClosedStep string
	Tweaks     map[string]float64
}

// Kind returns PartBell.
func (BellSpec) Kind() PartKind { return PartBell }
func (BellSpec) isPartSpec()    {}

// GooeySpec builds a GooeyPart.
type GooeySpec struct {
	Name     string
	Image    string
	Vertices []float64
	Indices  []uint16
	Tweaks   map[string]float64
}

// Kind returns PartGooey.
func (GooeySpec) Kind() PartKind { return PartGooey }
func (GooeySpec) isPartSpec()    {}

// BuildPart constructs the part spec describes, attaches it to c, and returns
// it. Out-of-range tweaks are logged and fall back to their defaults. Parts
// whose mass derives from the creature's, such as gooey parts, should be
// built after the bell.
func BuildPart(c *Creature, spec PartSpec) (BodyPart, error) {
	var part BodyPart
	switch s := spec.(type) {
	case BellSpec:
		tweaks, err := BellTweaksFrom(s.Tweaks)
		if err != nil {
			Logger().Warn("bell tweaks", "creature", c.id, "part", s.Name, "error", err)
		}
		if s.ClosedStep != "" {
			tweaks.ClosedStep = s.ClosedStep
		}
		anim, err := NewMeshAnimatorFromData(s.Animation)
		if err != nil {
			return nil, fmt.Errorf("bell %q animation: %w", s.Name, err)
		}
		bell, err := NewBell(c, anim, tweaks)
		if err != nil {
			return nil, fmt.Errorf("bell %q: %w", s.Name, err)
		}
		bell.name, bell.image = s.Name, s.Image
		part = bell
	case GooeySpec:
		tweaks, err := GooeyTweaksFrom(s.Tweaks)
		if err != nil {
			Logger().Warn("gooey tweaks", "creature", c.id, "part", s.Name, "error", err)
		}
		gooey, err := NewGooeyPart(c, s.Vertices, s.Indices, tweaks)
		if err != nil {
			return nil, fmt.Errorf("gooey %q: %w", s.Name, err)
		}
		gooey.name, gooey.image = s.Name, s.Image
		part = gooey
	default:
		return nil, fmt.Errorf("part spec %T: %w", spec, ErrInvalidConfiguration)
	}
	c.AddBodyPart(part)
	Logger().Debug("body part built", "creature", c.id, "kind", part.Kind())
	return part, nil
}

package gooey

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// Gooey part geometry.
const (
	gooeyOuterRadius  = 10.0
	gooeyCenterRadius = 12.0
	// gooeyForwardShift moves the outer ring toward the bell so it overlaps
	// the bell's rim.
	gooeyForwardShift = 5.0
)

// GooeyPart is a soft mass trailing the bell: a looped ring of nodes traced
// from the authored outline, pinned to the anchor on its left and right, with
// a single spine node behind the anchor sprung to both pin offsets and
// cross-linked to the ring.
//
// The part owns its mesh. Slot 0 holds the ring's centroid and slots 1..n
// the ring nodes, all in world space.
type GooeyPart struct {
	c        *Creature
	name     string
	image    string
	tweaks   GooeyTweaks
	authored []float64

	builder *ChainBuilder
	outer   *Chain
	center  *Chain
	pins    []*ChainNode

	spineOffset Vec2
	mesh        *VertexBuffer
	indices     []uint16
}

// NewGooeyPart builds the spring network for a gooey outline. vertices is a
// triangle-fan mesh whose vertex 0 is the hub; at least three vertices and
// three indices are required. The part's mass is MassFraction of the
// creature's current mass.
func NewGooeyPart(c *Creature, vertices []float64, indices []uint16, tweaks GooeyTweaks) (*GooeyPart, error) {
	n := len(vertices) / VertexStride
	if n < 3 || len(vertices)%VertexStride != 0 {
		return nil, fmt.Errorf("gooey outline has %d vertices: %w", n, ErrInsufficientData)
	}
	if indices == nil {
		indices = FanIndices(n)
	}
	if len(indices) < 3 {
		return nil, fmt.Errorf("gooey outline has %d indices: %w", len(indices), ErrInsufficientData)
	}

	g := &GooeyPart{
		c:        c,
		tweaks:   tweaks,
		authored: append([]float64(nil), vertices...),
		builder:  NewChainBuilder(c.body, DefaultMassWeighting()),
		mesh:     NewVertexBuffer(vertices),
		indices:  append([]uint16(nil), indices...),
	}
	g.build()
	return g, nil
}

func (g *GooeyPart) build() {
	c := g.c
	anchor := c.body
	forward := c.Forward()

	ring := make([]Vec2, 0, g.mesh.Len()-1)
	for i := 1; i < g.mesh.Len(); i++ {
		x, y := g.mesh.XY(i)
		ring = append(ring, c.TextureToWorld(x, y).Add(forward.Mult(gooeyForwardShift)))
	}

	t := g.tweaks
	g.outer = g.builder.BuildChain(ring, ChainConfig{
		Radius:     gooeyOuterRadius,
		Stiffness:  t.OuterSpringStiffness,
		Damping:    t.OuterSpringDamping,
		LoopAround: true,
	})

	half := c.Radius() * 0.5
	left, right := Vec2{Y: half}, Vec2{Y: -half}
	for _, offset := range []Vec2{left, right} {
		node := g.builder.Pin(g.outer, offset)
		node.Shape.SetFilter(cp.NewShapeFilter(c.group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
		g.pins = append(g.pins, node)
	}

	var centroid Vec2
	for _, p := range ring {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mult(1 / float64(len(ring)))
	dist := anchor.Position().Distance(centroid)
	spine := anchor.Position().Add(forward.Mult(-dist))

	g.center = g.builder.BuildChain([]Vec2{spine}, ChainConfig{
		Radius: gooeyCenterRadius,
		Group:  c.group,
	})
	core := g.center.Nodes[0]
	g.builder.AnchorSpring(core, left, t.InternalSpringStiffness, t.InternalSpringDamping)
	g.builder.AnchorSpring(core, right, t.InternalSpringStiffness, t.InternalSpringDamping)
	g.builder.CrossLink(g.outer, g.center, t.InternalSpringStiffness, t.InternalSpringDamping, 1)

	g.spineOffset = OffsetToPos(anchor, spine)
	g.distributeMass(c.Mass())
	g.writeMesh()

	Logger().Debug("gooey part built", "creature", c.id, "ring", g.outer.Len(), "farthest", g.builder.Farthest())
}

// distributeMass splits MassFraction of creatureMass between the ring and the
// spine by CenterMassFraction.
func (g *GooeyPart) distributeMass(creatureMass float64) {
	total := creatureMass * g.tweaks.MassFraction
	center := total * g.tweaks.CenterMassFraction
	g.builder.DistributeMass(g.outer, total-center)
	g.builder.DistributeMass(g.center, center)
}

func (g *GooeyPart) creatureMassChanged(m float64) { g.distributeMass(m) }

// Kind returns PartGooey.
func (g *GooeyPart) Kind() PartKind { return PartGooey }

// Name returns the part's name.
func (g *GooeyPart) Name() string { return g.name }

// Image returns the texture key the mesh is drawn with.
func (g *GooeyPart) Image() string { return g.image }

// Mesh returns the part's world-space mesh.
func (g *GooeyPart) Mesh() *VertexBuffer { return g.mesh }

// Indices returns the mesh's render indices.
func (g *GooeyPart) Indices() []uint16 { return g.indices }

// Transform returns the identity: the mesh is already in world space.
func (g *GooeyPart) Transform() Affine { return IdentityAffine }

// Builder returns the chain builder owning the part's nodes.
func (g *GooeyPart) Builder() *ChainBuilder { return g.builder }

// Outer returns the perimeter ring.
func (g *GooeyPart) Outer() *Chain { return g.outer }

// Center returns the spine chain.
func (g *GooeyPart) Center() *Chain { return g.center }

// Pins returns the ring nodes pinned to the anchor.
func (g *GooeyPart) Pins() []*ChainNode { return g.pins }

// Mass returns the part's total mass.
func (g *GooeyPart) Mass() float64 { return g.outer.Mass() + g.center.Mass() }

// Bind adds the part's bodies, shapes, and constraints to space.
func (g *GooeyPart) Bind(space *Space) { g.builder.Bind(space) }

// Unbind removes the part's physics objects from space.
func (g *GooeyPart) Unbind(space *Space) { g.builder.Unbind(space) }

// Translate moves every node by delta.
func (g *GooeyPart) Translate(delta Vec2) {
	g.builder.Translate(delta)
	g.writeMesh()
}

// Update applies drag to every node, pulls the spine toward its place behind
// the anchor, and writes node positions into the mesh.
func (g *GooeyPart) Update() error {
	g.builder.Update(DragModel{Constant: g.tweaks.DragConstant, MaxImpulse: DefaultMaxDragImpulse})
	g.builder.CorrectSpine(g.center.Nodes[0], g.spineOffset, g.tweaks.SpineCorrection, DefaultMaxDragImpulse)
	centroid := g.writeMesh()
	if !finiteVec(centroid) {
		return fmt.Errorf("gooey mesh centroid %v: %w", centroid, ErrUnstable)
	}
	return nil
}

func (g *GooeyPart) writeMesh() Vec2 {
	centroid := g.builder.WriteMesh(g.outer, g.mesh, 1)
	g.mesh.SetXY(0, centroid.X, centroid.Y)
	return centroid
}

// AdjustTweak sets one gooey tweak by name and pushes the new value into the
// spring network. Pin joints are never changed.
func (g *GooeyPart) AdjustTweak(name string, v float64) error {
	if err := g.tweaks.Set(name, v); err != nil {
		return err
	}
	t := g.tweaks
	switch name {
	case "mass_fraction", "center_mass_fraction":
		g.distributeMass(g.c.Mass())
	case "outer_spring_stiffness", "outer_spring_damping":
		for _, node := range g.outer.Nodes {
			setSpring(node.PerimeterSpring, t.OuterSpringStiffness, t.OuterSpringDamping)
		}
	case "internal_spring_stiffness", "internal_spring_damping":
		for _, chain := range []*Chain{g.outer, g.center} {
			for _, node := range chain.Nodes {
				for _, c := range node.InternalSprings {
					setSpring(c, t.InternalSpringStiffness, t.InternalSpringDamping)
				}
			}
		}
	}
	return nil
}

// Tweaks returns the part's tweak values by name.
func (g *GooeyPart) Tweaks() map[string]float64 { return g.tweaks.Values() }

// GooeyTweaks returns the part's tuning.
func (g *GooeyPart) GooeyTweaks() GooeyTweaks { return g.tweaks }

func setSpring(c *cp.Constraint, stiffness, damping float64) {
	if s, ok := dampedSpring(c); ok {
		s.Stiffness = stiffness
		s.Damping = damping
	}
}

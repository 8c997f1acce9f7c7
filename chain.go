package gooey

import (
	"math"
	"slices"

	"github.com/jakecoffman/cp"
)

// SpringMaxForce caps the force any chain spring may exert.
const SpringMaxForce = 1e6

const (
	chainFriction   = 0.4
	chainElasticity = 0.3
	minNodeMass     = 1e-6
)

// MassWeighting controls how a chain's mass is spread over its nodes by
// distance from the anchor body:
//
//	mass = perNode * (dist/farthest)^Exponent + BaseFraction*perNode
//
// Nodes farther from the anchor are heavier, so a chain's tip lags its root.
type MassWeighting struct {
	Exponent     float64
	BaseFraction float64
}

// DefaultMassWeighting returns the weighting used by creature body parts.
func DefaultMassWeighting() MassWeighting {
	return MassWeighting{Exponent: 2, BaseFraction: 0.2}
}

// NodeMass applies the weighting formula. A non-positive farthest distance
// weights every node as if it were the farthest.
func (w MassWeighting) NodeMass(perNode, dist, farthest float64) float64 {
	ratio := 1.0
	if farthest > 0 {
		ratio = dist / farthest
	}
	m := perNode*math.Pow(ratio, w.Exponent) + w.BaseFraction*perNode
	if math.IsNaN(m) || m < minNodeMass {
		return minNodeMass
	}
	return m
}

// ChainConfig describes one chain for ChainBuilder.BuildChain.
type ChainConfig struct {
	MassTotal  float64
	Radius     float64
	Stiffness  float64
	Damping    float64
	LoopAround bool
	// Group is the collision group of the node shapes; shapes sharing a
	// nonzero group never collide with each other.
	Group uint
}

// ChainNode is one point-mass body of a soft-body spring network.
type ChainNode struct {
	Body  *cp.Body
	Shape *cp.Shape
	// PerimeterSpring links the node to the previous node of its chain. On
	// the first node of a looped chain it is the closing spring from the last
	// node. Nil otherwise.
	PerimeterSpring *cp.Constraint
	// InternalSprings are cross links and anchor attachments owned by this
	// node. Pin joints to the anchor are stored here too.
	InternalSprings []*cp.Constraint
	Radius          float64
	// Distance is the node's distance from the anchor when it was built.
	Distance float64
}

// Chain is an ordered list of nodes linked by perimeter springs.
type Chain struct {
	Nodes []*ChainNode
	Loop  bool
	mass  float64
}

// Len returns the number of nodes.
func (c *Chain) Len() int { return len(c.Nodes) }

// Mass returns the total mass most recently distributed over the chain.
func (c *Chain) Mass() float64 { return c.mass }

// ChainBuilder constructs and owns chains of spring-connected bodies trailing
// an anchor body. It owns every node and every constraint between them;
// constraints to the anchor are shared with the physics space.
type ChainBuilder struct {
	anchor    *cp.Body
	weighting MassWeighting
	chains    []*Chain
	farthest  float64
	space     *Space
}

// NewChainBuilder creates a builder whose chains attach to anchor.
func NewChainBuilder(anchor *cp.Body, weighting MassWeighting) *ChainBuilder {
	return &ChainBuilder{anchor: anchor, weighting: weighting}
}

// Anchor returns the anchor body.
func (b *ChainBuilder) Anchor() *cp.Body { return b.anchor }

// Chains returns the chains built so far.
func (b *ChainBuilder) Chains() []*Chain { return b.chains }

// Farthest returns the largest build-time node distance across all chains.
func (b *ChainBuilder) Farthest() float64 { return b.farthest }

// BuildChain creates one node per position and links adjacent nodes with
// damped springs whose rest length is their initial separation. With
// LoopAround an extra spring closes the last node back onto the first.
// Masses follow the builder's weighting. Building from zero positions is a
// programming error and panics.
//
// If the builder is bound to a space the new objects are added immediately.
func (b *ChainBuilder) BuildChain(positions []Vec2, cfg ChainConfig) *Chain {
	if len(positions) == 0 {
		panic("gooey: BuildChain needs at least one position")
	}

	anchorPos := b.anchor.Position()
	chain := &Chain{Loop: cfg.LoopAround}
	var prev *ChainNode
	for _, pos := range positions {
		body := cp.NewBody(1, cp.MomentForCircle(1, 0, cfg.Radius, Vec2{}))
		body.SetPosition(pos)

		shape := cp.NewCircle(body, cfg.Radius, Vec2{})
		shape.SetFriction(chainFriction)
		shape.SetElasticity(chainElasticity)
		if cfg.Group != cp.NO_GROUP {
			shape.SetFilter(cp.NewShapeFilter(cfg.Group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
		}

		node := &ChainNode{
			Body:     body,
			Shape:    shape,
			Radius:   cfg.Radius,
			Distance: anchorPos.Distance(pos),
		}
		if prev != nil {
			node.PerimeterSpring = newSpring(prev.Body, body, Vec2{}, Vec2{},
				prev.Body.Position().Distance(pos), cfg.Stiffness, cfg.Damping)
		}
		if node.Distance > b.farthest {
			b.farthest = node.Distance
		}
		Logger().Debug("chain node created", "x", pos.X, "y", pos.Y, "radius", cfg.Radius)

		chain.Nodes = append(chain.Nodes, node)
		prev = node
	}

	if cfg.LoopAround && len(chain.Nodes) > 1 {
		first, last := chain.Nodes[0], chain.Nodes[len(chain.Nodes)-1]
		first.PerimeterSpring = newSpring(last.Body, first.Body, Vec2{}, Vec2{},
			last.Body.Position().Distance(first.Body.Position()), cfg.Stiffness, cfg.Damping)
	}

	b.chains = append(b.chains, chain)
	b.DistributeMass(chain, cfg.MassTotal)
	if b.space != nil {
		b.space.Add(chainObjects(chain)...)
	}
	return chain
}

// DistributeMass spreads total over the chain's nodes using the builder's
// weighting and its farthest node distance. Moments are recomputed for each
// node's circle.
func (b *ChainBuilder) DistributeMass(chain *Chain, total float64) {
	chain.mass = total
	per := total / float64(len(chain.Nodes))
	for _, node := range chain.Nodes {
		m := b.weighting.NodeMass(per, node.Distance, b.farthest)
		node.Body.SetMass(m)
		node.Body.SetMoment(cp.MomentForCircle(m, 0, node.Radius, Vec2{}))
	}
	Logger().Debug("chain mass distributed", "nodes", len(chain.Nodes), "total", total, "farthest", b.farthest)
}

// CrossLink connects every node of a to its connectCount nearest nodes of b
// (by current position) with springs whose rest length is their separation
// now. The springs are owned by a's nodes. A node is never linked to itself.
func (b *ChainBuilder) CrossLink(a, other *Chain, stiffness, damping float64, connectCount int) []*cp.Constraint {
	type candidate struct {
		dist float64
		node *ChainNode
	}

	var created []*cp.Constraint
	for _, n1 := range a.Nodes {
		p1 := n1.Body.Position()
		cands := make([]candidate, 0, len(other.Nodes))
		for _, n2 := range other.Nodes {
			if n2 == n1 {
				continue
			}
			cands = append(cands, candidate{p1.Distance(n2.Body.Position()), n2})
		}
		slices.SortStableFunc(cands, func(x, y candidate) int {
			switch {
			case x.dist < y.dist:
				return -1
			case x.dist > y.dist:
				return 1
			}
			return 0
		})

		for _, c := range cands[:min(connectCount, len(cands))] {
			spring := newSpring(n1.Body, c.node.Body, Vec2{}, Vec2{}, c.dist, stiffness, damping)
			n1.InternalSprings = append(n1.InternalSprings, spring)
			created = append(created, spring)
		}
	}
	if b.space != nil {
		b.space.Add(created)
	}
	return created
}

// Pin attaches the chain node nearest to offset (in the anchor's frame) to
// the anchor with a rigid pin joint of zero length. The joint is stored in
// the node's InternalSprings and the node is returned.
func (b *ChainBuilder) Pin(chain *Chain, offset Vec2) *ChainNode {
	node := b.Nearest(chain, WorldPosOfOffset(b.anchor, offset))
	local := OffsetToPos(b.anchor, node.Body.Position())
	pin := cp.NewPinJoint(b.anchor, node.Body, local, Vec2{})
	node.InternalSprings = append(node.InternalSprings, pin)
	if b.space != nil {
		b.space.Add(pin)
	}
	return node
}

// AnchorSpring links node to offset (in the anchor's frame) with a damped
// spring whose rest length is their current separation.
func (b *ChainBuilder) AnchorSpring(node *ChainNode, offset Vec2, stiffness, damping float64) *cp.Constraint {
	rest := WorldPosOfOffset(b.anchor, offset).Distance(node.Body.Position())
	spring := newSpring(b.anchor, node.Body, offset, Vec2{}, rest, stiffness, damping)
	node.InternalSprings = append(node.InternalSprings, spring)
	if b.space != nil {
		b.space.Add(spring)
	}
	return spring
}

// Nearest returns the node of chain closest to pos.
func (b *ChainBuilder) Nearest(chain *Chain, pos Vec2) *ChainNode {
	best := chain.Nodes[0]
	bestDist := best.Body.Position().DistanceSq(pos)
	for _, node := range chain.Nodes[1:] {
		if d := node.Body.Position().DistanceSq(pos); d < bestDist {
			best, bestDist = node, d
		}
	}
	return best
}

// Update applies drag to every node of every chain.
func (b *ChainBuilder) Update(drag DragModel) {
	for _, chain := range b.chains {
		for _, node := range chain.Nodes {
			drag.Apply(node.Body, 1)
		}
	}
}

// WriteMesh writes the chain's node positions into consecutive slots of buf
// starting at first and returns their centroid. Slots past the end of buf are
// ignored.
func (b *ChainBuilder) WriteMesh(chain *Chain, buf *VertexBuffer, first int) Vec2 {
	var sum Vec2
	for i, node := range chain.Nodes {
		pos := node.Body.Position()
		sum = sum.Add(pos)
		if slot := first + i; slot < buf.Len() {
			buf.SetXY(slot, pos.X, pos.Y)
		}
	}
	return sum.Mult(1 / float64(len(chain.Nodes)))
}

// CorrectSpine nudges node toward offset (in the anchor's frame) with an
// impulse of gain * mass * error, capped at maxImpulse. This keeps a loosely
// sprung spine from drifting away from its owner.
func (b *ChainBuilder) CorrectSpine(node *ChainNode, offset Vec2, gain, maxImpulse float64) {
	if gain <= 0 {
		return
	}
	target := WorldPosOfOffset(b.anchor, offset)
	pos := node.Body.Position()
	imp := target.Sub(pos).Mult(gain * node.Body.Mass())
	if !finiteVec(imp) {
		return
	}
	if maxImpulse > 0 {
		imp = imp.Clamp(maxImpulse)
	}
	node.Body.ApplyImpulseAtWorldPoint(imp, pos)
}

// Translate moves every node by delta.
func (b *ChainBuilder) Translate(delta Vec2) {
	for _, chain := range b.chains {
		for _, node := range chain.Nodes {
			node.Body.SetPosition(node.Body.Position().Add(delta))
		}
	}
}

// Objects returns every physics object the builder owns, constraints first
// so the list can be passed straight to Space.Remove.
func (b *ChainBuilder) Objects() []any {
	var constraints, rest []any
	for _, chain := range b.chains {
		for _, obj := range chainObjects(chain) {
			if _, ok := obj.(*cp.Constraint); ok {
				constraints = append(constraints, obj)
			} else {
				rest = append(rest, obj)
			}
		}
	}
	return append(constraints, rest...)
}

// Bind adds every owned object to space. Chains built later are added as
// they are created.
func (b *ChainBuilder) Bind(space *Space) {
	b.space = space
	space.Add(b.Objects()...)
}

// Unbind removes every owned object from space.
func (b *ChainBuilder) Unbind(space *Space) {
	space.Remove(b.Objects()...)
	if b.space == space {
		b.space = nil
	}
}

// chainObjects lists a chain's bodies, shapes, and constraints.
func chainObjects(chain *Chain) []any {
	objs := make([]any, 0, len(chain.Nodes)*4)
	for _, node := range chain.Nodes {
		objs = append(objs, node.Body, node.Shape)
		if node.PerimeterSpring != nil {
			objs = append(objs, node.PerimeterSpring)
		}
		for _, c := range node.InternalSprings {
			objs = append(objs, c)
		}
	}
	return objs
}

func newSpring(a, b *cp.Body, anchorA, anchorB Vec2, rest, stiffness, damping float64) *cp.Constraint {
	spring := cp.NewDampedSpring(a, b, anchorA, anchorB, rest, stiffness, damping)
	spring.SetMaxForce(SpringMaxForce)
	return spring
}

// dampedSpring returns the spring behind c, or false for other constraint
// kinds such as pin joints.
func dampedSpring(c *cp.Constraint) (*cp.DampedSpring, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.Class.(*cp.DampedSpring)
	return s, ok
}

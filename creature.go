package gooey

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// Creature defaults.
const (
	DefaultCreatureMass     = 100.0
	DefaultCreatureMoment   = 1e5
	DefaultCreatureRadius   = 100.0
	DefaultCreatureMaxSpeed = 1000.0
	// DefaultCreatureDrag is the body drag constant used until a bell sets
	// its own.
	DefaultCreatureDrag = 1e-10
)

const (
	creatureFriction   = 0.4
	creatureElasticity = 0.3
)

// CreatureConfig describes a new creature. Zero fields take their defaults.
type CreatureConfig struct {
	ID    CreatureID
	Pos   Vec2
	Angle float64 // degrees
	Scale float64
	// Group is the collision group shared by the anchor and the parts pinned
	// to it. Zero derives a group from ID.
	Group    uint
	Mass     float64
	Moment   float64
	Radius   float64
	MaxSpeed float64
}

func (cfg *CreatureConfig) defaults() {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Group == cp.NO_GROUP {
		cfg.Group = uint(cfg.ID) + 1
	}
	if cfg.Mass <= 0 {
		cfg.Mass = DefaultCreatureMass
	}
	if cfg.Moment <= 0 {
		cfg.Moment = DefaultCreatureMoment
	}
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultCreatureRadius
	}
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = DefaultCreatureMaxSpeed
	}
}

// Creature is one anchor rigid body plus the body parts attached to it.
//
// Position and angle are not stored on the creature: they read straight
// through to the anchor body. Angles are in degrees and always normalized to
// (-180, 180]. The creature's forward direction is its body rotation; in
// texture space forward is +Y.
//
// Scale applies to rendering and to geometry derived from textures. It does
// not rescale mass; call Bell.RefreshShape after changing the mesh.
type Creature struct {
	id       CreatureID
	body     *cp.Body
	shape    *cp.Shape
	group    uint
	scale    float64
	maxSpeed float64

	// centering is added to texture coordinates to move the texture's
	// rotation origin onto the body position.
	centering Vec2
	crossArea float64
	drag      DragModel

	parts []BodyPart
	bell  *Bell

	orienting      bool
	orientAngle    float64
	orientThrottle float64

	space     *Space
	bounds    Rect
	transform Affine
	destroyed bool

	// OnWrap, if set, is called after the creature is teleported across a
	// boundary of its environment.
	OnWrap func(c *Creature, from Vec2)
}

// NewCreature creates a creature with its anchor body and shape. The creature
// is not simulated until BindEnvironment.
func NewCreature(cfg CreatureConfig) *Creature {
	cfg.defaults()

	body := cp.NewBody(cfg.Mass, cfg.Moment)
	body.SetPosition(cfg.Pos)
	body.SetAngle(radians(NormalizeAngle(cfg.Angle)))

	shape := cp.NewCircle(body, cfg.Radius, Vec2{})
	shape.SetFriction(creatureFriction)
	shape.SetElasticity(creatureElasticity)
	shape.SetFilter(cp.NewShapeFilter(cfg.Group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))

	c := &Creature{
		id:        cfg.ID,
		body:      body,
		shape:     shape,
		group:     cfg.Group,
		scale:     cfg.Scale,
		maxSpeed:  cfg.MaxSpeed,
		crossArea: math.Pi * cfg.Radius * cfg.Radius,
		drag:      DragModel{Constant: DefaultCreatureDrag},
	}
	body.UserData = c
	c.updateTransform()
	return c
}

// ID returns the creature's registry id.
func (c *Creature) ID() CreatureID { return c.id }

// Body returns the anchor body.
func (c *Creature) Body() *cp.Body { return c.body }

// Shape returns the anchor's collision circle.
func (c *Creature) Shape() *cp.Shape { return c.shape }

// Group returns the collision group shared by the anchor and pinned parts.
func (c *Creature) Group() uint { return c.group }

// Parts returns the attached body parts in the order they were added.
func (c *Creature) Parts() []BodyPart { return c.parts }

// Bell returns the creature's locomotion part, or nil.
func (c *Creature) Bell() *Bell { return c.bell }

// Pos returns the anchor body's position.
func (c *Creature) Pos() Vec2 { return c.body.Position() }

// SetPos teleports the anchor and moves every part by the same delta so soft
// parts are not left behind.
func (c *Creature) SetPos(p Vec2) {
	delta := p.Sub(c.body.Position())
	c.body.SetPosition(p)
	for _, part := range c.parts {
		part.Translate(delta)
	}
	c.updateTransform()
}

// Angle returns the body angle in degrees, normalized to (-180, 180].
func (c *Creature) Angle() float64 { return NormalizeAngle(degrees(c.body.Angle())) }

// SetAngle sets the body angle in degrees.
func (c *Creature) SetAngle(deg float64) {
	c.body.SetAngle(radians(NormalizeAngle(deg)))
	c.updateTransform()
}

// Scale returns the render scale.
func (c *Creature) Scale() float64 { return c.scale }

// SetScale changes the render scale and refreshes the bell's collision shape.
func (c *Creature) SetScale(s float64) {
	if s <= 0 || math.IsNaN(s) {
		return
	}
	c.scale = s
	if c.bell != nil {
		c.bell.RefreshShape()
	}
	c.updateTransform()
}

// Mass returns the anchor body's mass.
func (c *Creature) Mass() float64 { return c.body.Mass() }

// Radius returns the anchor circle's radius.
func (c *Creature) Radius() float64 {
	if circle, ok := c.shape.Class.(*cp.Circle); ok {
		return circle.Radius()
	}
	return 0
}

// CrossArea returns the area the anchor presents to the fluid.
func (c *Creature) CrossArea() float64 { return c.crossArea }

// Drag returns the drag model applied to the anchor each tick.
func (c *Creature) Drag() DragModel { return c.drag }

// SetMass sets the anchor's mass and the moment of its circle, then lets
// parts whose mass depends on the creature's redistribute theirs.
func (c *Creature) SetMass(m float64) {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		Logger().Warn("ignoring invalid creature mass", "creature", c.id, "mass", m)
		return
	}
	c.body.SetMass(m)
	c.body.SetMoment(cp.MomentForCircle(m, 0, max(c.Radius(), 1), Vec2{}))
	for _, part := range c.parts {
		if l, ok := part.(massListener); ok {
			l.creatureMassChanged(m)
		}
	}
}

// Orient asks the locomotion part to steer toward angle (degrees) with the
// given throttle in [0, 1].
func (c *Creature) Orient(angle, throttle float64) {
	c.orienting = true
	c.orientAngle = NormalizeAngle(angle)
	c.orientThrottle = cp.Clamp01(throttle)
}

// ClearOrient stops steering.
func (c *Creature) ClearOrient() {
	c.orienting = false
	c.orientAngle = 0
	c.orientThrottle = 0
}

// Orienting returns the steering target and throttle, and whether steering
// is active.
func (c *Creature) Orienting() (angle, throttle float64, ok bool) {
	return c.orientAngle, c.orientThrottle, c.orienting
}

// AddBodyPart attaches part. If the creature is already bound to a space the
// part's physics objects are registered immediately; otherwise that happens
// in BindEnvironment.
func (c *Creature) AddBodyPart(part BodyPart) {
	c.parts = append(c.parts, part)
	if bell, ok := part.(*Bell); ok {
		c.bell = bell
	}
	if c.space != nil {
		part.Bind(c.space)
	}
}

// BindEnvironment registers the creature and its parts with space. bounds is
// the wrap-around region; an empty rect disables wrapping.
func (c *Creature) BindEnvironment(space *Space, bounds Rect) {
	c.space = space
	c.bounds = bounds
	space.Add(c.body, c.shape)
	for _, part := range c.parts {
		part.Bind(space)
	}
}

// Space returns the space the creature is bound to, or nil.
func (c *Creature) Space() *Space { return c.space }

// Destroy unregisters every part and then the anchor from the space, and
// releases the bell's animator. It is safe to call more than once.
func (c *Creature) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.bell != nil {
		c.bell.anim.Release()
	}
	if c.space == nil {
		return
	}
	for i := len(c.parts) - 1; i >= 0; i-- {
		c.parts[i].Unbind(c.space)
	}
	c.space.Remove(c.shape, c.body)
	c.space = nil
}

// Destroyed reports whether Destroy has been called.
func (c *Creature) Destroyed() bool { return c.destroyed }

// Update runs once per physics tick after the space has stepped. It applies
// drag and the speed limit to the anchor, updates every part, and wraps the
// creature around its bounds. Part errors are joined; the remaining parts
// still update.
func (c *Creature) Update() error {
	if c.destroyed {
		return nil
	}

	v := c.body.Velocity()
	if !finiteVec(v) || !finiteVec(c.body.Position()) {
		return fmt.Errorf("creature %d anchor state: %w", c.id, ErrUnstable)
	}

	drag := c.drag
	// Drag can stop the body but never reverse it.
	drag.MaxImpulse = c.body.Mass() * v.Length()
	drag.Apply(c.body, c.crossArea)
	if speed := c.body.Velocity().Length(); speed > c.maxSpeed {
		c.body.SetVelocityVector(c.body.Velocity().Mult(c.maxSpeed / speed))
	}

	var errs []error
	for _, part := range c.parts {
		if err := part.Update(); err != nil {
			errs = append(errs, fmt.Errorf("creature %d %s part: %w", c.id, part.Kind(), err))
		}
	}

	if from, ok := c.wrap(); ok {
		if c.OnWrap != nil {
			c.OnWrap(c, from)
		}
	} else {
		c.updateTransform()
	}
	return errors.Join(errs...)
}

// wrap teleports the creature to the opposite edge when it has left its
// bounds, returning the position it wrapped from.
func (c *Creature) wrap() (Vec2, bool) {
	if c.bounds.Empty() {
		return Vec2{}, false
	}
	b := c.bounds
	pos := c.body.Position()
	next := pos
	switch {
	case pos.Y > b.Y+b.Height:
		next.Y = b.Y + 1
	case pos.Y < b.Y:
		next.Y = b.Y + b.Height - 1
	}
	switch {
	case pos.X > b.X+b.Width:
		next.X = b.X + 1
	case pos.X < b.X:
		next.X = b.X + b.Width - 1
	}
	if next == pos {
		return Vec2{}, false
	}
	Logger().Debug("creature wrapped", "creature", c.id, "fromX", pos.X, "fromY", pos.Y, "toX", next.X, "toY", next.Y)
	c.SetPos(next)
	return pos, true
}

// Animate advances the creature's animation clock by dt seconds.
func (c *Creature) Animate(dt float64) {
	if c.destroyed || c.bell == nil {
		return
	}
	c.bell.AdvanceAnimation(dt)
}

// TextureToWorld maps a point in the creature's texture space to world
// space: centered, scaled, rotated so texture +Y faces forward, and
// translated to the body position.
func (c *Creature) TextureToWorld(x, y float64) Vec2 {
	p := Vec2{X: (x + c.centering.X) * c.scale, Y: (y + c.centering.Y) * c.scale}
	return p.Rotate(cp.ForAngle(c.body.Angle() - math.Pi/2)).Add(c.body.Position())
}

// Forward returns the unit vector the creature faces.
func (c *Creature) Forward() Vec2 { return c.body.Rotation() }

// RenderTransform returns the cached texture-to-world transform, refreshed
// after each Update and on every teleport.
func (c *Creature) RenderTransform() Affine { return c.transform }

func (c *Creature) updateTransform() {
	pos := c.body.Position()
	c.transform = ComposeAffine(pos.X, pos.Y, c.body.Angle()-math.Pi/2, c.scale, -c.centering.X, -c.centering.Y)
}

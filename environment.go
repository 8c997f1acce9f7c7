package gooey

import (
	"fmt"
	"time"
)

// EventSink is the interface for optional ECS integration. When set on an
// Environment, creature lifecycle events are forwarded to it.
type EventSink interface {
	EmitEvent(event CreatureEvent)
}

// CreatureEvent carries a creature lifecycle event for the ECS bridge.
type CreatureEvent struct {
	Type       EventType
	CreatureID CreatureID
	X, Y       float64
	// FromX and FromY are the pre-wrap position (EventCreatureWrapped).
	FromX, FromY float64
	// Err is the update failure (EventCreatureFault).
	Err error
}

// Environment defaults.
const (
	DefaultPhysicsStep = 1.0 / 60
	DefaultMaxSubSteps = 5
)

// EnvironmentConfig configures NewEnvironment. Zero fields take their
// defaults.
type EnvironmentConfig struct {
	// Bounds is the wrap-around region creatures live in. Empty disables
	// wrapping.
	Bounds Rect
	// PhysicsStep is the fixed simulation timestep in seconds.
	PhysicsStep float64
	// MaxSubSteps bounds how many physics steps one Step call may run.
	// Accumulated time beyond that is dropped.
	MaxSubSteps int
	// Debug logs per-step timing at debug level.
	Debug bool
}

// stepStats holds timing for one Step call. Only populated in debug mode.
type stepStats struct {
	physicsTime time.Duration
	updateTime  time.Duration
	subSteps    int
	faults      int
}

// Environment owns the physics space and a registry of creatures. It has two
// drivers that must stay decoupled: Step runs fixed-timestep physics and
// creature updates; Animate advances the animation clock. Call them from the
// host's per-frame hook in either order; each reads the state the other left
// behind.
type Environment struct {
	space  *Space
	bounds Rect
	step   float64
	maxSub int
	debug  bool

	creatures map[CreatureID]*Creature
	order     []*Creature
	nextID    CreatureID

	accumulator float64
	paused      bool
	sink        EventSink
}

// NewEnvironment creates an empty environment.
func NewEnvironment(cfg EnvironmentConfig) *Environment {
	if cfg.PhysicsStep <= 0 {
		cfg.PhysicsStep = DefaultPhysicsStep
	}
	if cfg.MaxSubSteps <= 0 {
		cfg.MaxSubSteps = DefaultMaxSubSteps
	}
	Logger().Info("environment created", "width", cfg.Bounds.Width, "height", cfg.Bounds.Height, "step", cfg.PhysicsStep)
	return &Environment{
		space:     NewSpace(),
		bounds:    cfg.Bounds,
		step:      cfg.PhysicsStep,
		maxSub:    cfg.MaxSubSteps,
		debug:     cfg.Debug,
		creatures: make(map[CreatureID]*Creature),
		nextID:    1,
	}
}

// Space returns the environment's physics space.
func (e *Environment) Space() *Space { return e.space }

// Bounds returns the wrap-around region.
func (e *Environment) Bounds() Rect { return e.bounds }

// SetEventSink sets the optional ECS bridge.
func (e *Environment) SetEventSink(sink EventSink) { e.sink = sink }

// SetPaused stops or resumes both drivers. Time passed to Step while paused
// is discarded.
func (e *Environment) SetPaused(paused bool) {
	e.paused = paused
	e.accumulator = 0
}

// Paused reports whether the environment is paused.
func (e *Environment) Paused() bool { return e.paused }

// NextID returns an unused creature id.
func (e *Environment) NextID() CreatureID {
	for {
		id := e.nextID
		e.nextID++
		if _, ok := e.creatures[id]; !ok {
			return id
		}
	}
}

// AddCreature registers c and binds it to the space. Adding a second
// creature with the same id returns ErrInvalidConfiguration.
func (e *Environment) AddCreature(c *Creature) error {
	if _, ok := e.creatures[c.id]; ok {
		return fmt.Errorf("creature %d already registered: %w", c.id, ErrInvalidConfiguration)
	}
	e.creatures[c.id] = c
	e.order = append(e.order, c)
	c.OnWrap = e.onWrap
	c.BindEnvironment(e.space, e.bounds)
	e.emit(EventCreatureAdded, c, nil)
	return nil
}

// RemoveCreature destroys the creature with id and removes it from the
// registry. It reports whether the creature existed.
func (e *Environment) RemoveCreature(id CreatureID) bool {
	c, ok := e.creatures[id]
	if !ok {
		return false
	}
	pos := c.Pos()
	c.Destroy()
	c.OnWrap = nil
	delete(e.creatures, id)
	for i, other := range e.order {
		if other == c {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.sink != nil {
		e.sink.EmitEvent(CreatureEvent{Type: EventCreatureRemoved, CreatureID: id, X: pos.X, Y: pos.Y})
	}
	return true
}

// Creature returns the creature with id, or nil.
func (e *Environment) Creature(id CreatureID) *Creature { return e.creatures[id] }

// Creatures returns the registered creatures in the order they were added.
// The returned slice MUST NOT be mutated.
func (e *Environment) Creatures() []*Creature { return e.order }

// Step accumulates dt and runs as many fixed physics steps as fit, up to
// MaxSubSteps. After each space step every creature is updated; a creature
// whose update fails or panics is reported and skipped without stopping the
// others. It returns the number of steps run.
func (e *Environment) Step(dt float64) int {
	if e.paused || dt <= 0 {
		return 0
	}
	e.accumulator += dt

	var stats stepStats
	for e.accumulator >= e.step && stats.subSteps < e.maxSub {
		t0 := time.Now()
		e.space.Step(e.step)
		t1 := time.Now()
		for _, c := range e.order {
			if err := e.updateCreature(c); err != nil {
				stats.faults++
				Logger().Warn("creature update failed", "creature", c.id, "error", err)
				e.emit(EventCreatureFault, c, err)
			}
		}
		if e.debug {
			stats.physicsTime += t1.Sub(t0)
			stats.updateTime += time.Since(t1)
		}
		e.accumulator -= e.step
		stats.subSteps++
	}
	if e.accumulator >= e.step {
		Logger().Debug("physics falling behind, dropping time", "dropped", e.accumulator)
		e.accumulator = 0
	}
	e.debugLog(stats)
	return stats.subSteps
}

// updateCreature isolates one creature's update so a panic inside it is
// reported as ErrUnstable.
func (e *Environment) updateCreature(c *Creature) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("creature %d panicked: %v: %w", c.id, r, ErrUnstable)
		}
	}()
	return c.Update()
}

// Animate advances every creature's animation clock by dt.
func (e *Environment) Animate(dt float64) {
	if e.paused || dt <= 0 {
		return
	}
	for _, c := range e.order {
		e.animateCreature(c, dt)
	}
}

func (e *Environment) animateCreature(c *Creature, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("creature %d animation panicked: %v: %w", c.id, r, ErrUnstable)
			Logger().Warn("creature animation failed", "creature", c.id, "error", err)
			e.emit(EventCreatureFault, c, err)
		}
	}()
	c.Animate(dt)
}

// Destroy removes every creature and then sweeps anything left in the space.
func (e *Environment) Destroy() {
	for len(e.order) > 0 {
		e.RemoveCreature(e.order[len(e.order)-1].id)
	}
	e.space.Cleanup()
	Logger().Info("environment destroyed")
}

func (e *Environment) onWrap(c *Creature, from Vec2) {
	if e.sink == nil {
		return
	}
	pos := c.Pos()
	e.sink.EmitEvent(CreatureEvent{
		Type:       EventCreatureWrapped,
		CreatureID: c.id,
		X:          pos.X,
		Y:          pos.Y,
		FromX:      from.X,
		FromY:      from.Y,
	})
}

func (e *Environment) emit(t EventType, c *Creature, err error) {
	if e.sink == nil {
		return
	}
	pos := c.Pos()
	e.sink.EmitEvent(CreatureEvent{Type: t, CreatureID: c.id, X: pos.X, Y: pos.Y, Err: err})
}

func (e *Environment) debugLog(stats stepStats) {
	if !e.debug || stats.subSteps == 0 {
		return
	}
	Logger().Debug("environment step",
		"substeps", stats.subSteps,
		"physics", stats.physicsTime,
		"update", stats.updateTime,
		"creatures", len(e.order),
		"faults", stats.faults)
}

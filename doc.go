// Package gooey animates soft-bodied creatures for [Ebitengine] games.
//
// A creature is one anchor body in a [cp] physics space plus the body parts
// that hang off it. A pulsing [Bell] is driven by a keyframe [MeshAnimator]:
// every time the bell's rim moves, the change in its vertical fraction is
// turned into a propulsion impulse on the anchor. A [GooeyPart] is a spring
// network built by a [ChainBuilder] that trails behind the bell and writes its
// node positions back into a renderable [VertexBuffer] every tick.
//
// # Quick start
//
// Creatures are usually loaded from a JSON document and registered with an
// [Environment], which owns the physics space:
//
//	doc, err := gooey.LoadCreatureDocument(data)
//	if err != nil {
//		return err
//	}
//	c, err := gooey.AssembleCreature(doc)
//	if err != nil {
//		// c may still be usable; failed parts were skipped.
//		slog.Warn("partial creature", "err", err)
//	}
//	env := gooey.NewEnvironment(gooey.EnvironmentConfig{
//		Bounds: gooey.Rect{Width: 1280, Height: 720},
//	})
//	env.AddCreature(c)
//
// Drive the environment from your game loop. The animation clock and the
// physics step are separate so they can run at different rates:
//
//	func (g *Game) Update() error {
//		dt := 1.0 / float64(ebiten.TPS())
//		g.env.Animate(dt)
//		g.env.Step(dt)
//		return nil
//	}
//
// # Coordinates
//
// Physics space has Y pointing up and angles in degrees, normalized to
// (-180, 180]. Angle 0 faces +X. A part's mesh is drawn with
// [MeshPart.Transform]; compose it with [FlipY] for a Y-down screen. The
// render subpackage does that for Ebitengine.
//
// # Tuning
//
// Bells and gooey parts expose named tweaks (push_factor, density,
// outer_spring_stiffness, ...) through [TweakablePart.AdjustTweak]. Changes
// apply to the live physics objects. [BellTweakMetas] and [GooeyTweakMetas]
// describe the accepted ranges.
//
// # Logging
//
// gooey is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler.
//
// Creature lifecycle events can be bridged into a [Donburi] world with the
// gooey/ecs adapter.
//
// [Ebitengine]: https://ebitengine.org
// [cp]: https://github.com/jakecoffman/cp
// [Donburi]: https://github.com/yohamta/donburi
package gooey

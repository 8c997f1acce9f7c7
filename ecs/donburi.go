// Package ecs provides ECS adapters for gooey.
package ecs

import (
	"github.com/phanxgames/gooey"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CreatureEventType is the Donburi event type for gooey creature events.
// Subscribe to this in your ECS systems to react to creatures entering,
// leaving, wrapping around, or faulting in an environment.
var CreatureEventType = events.NewEventType[gooey.CreatureEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Creature events are published to CreatureEventType and can be consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) gooey.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event gooey.CreatureEvent) {
	CreatureEventType.Publish(s.world, event)
}

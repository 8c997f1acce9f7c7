// Package ecs provides ECS adapters for gooey's creature lifecycle events.
//
// The primary adapter is [NewDonburiSink], which bridges gooey creature
// events (added, removed, wrapped, fault) into a [Donburi] world as typed
// events. Subscribe to [CreatureEventType] in your ECS systems to receive
// them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	env.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

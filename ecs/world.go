package ecs

import (
	"math"

	"github.com/milk9111/lanerunner/ecs/component"
)

// Time is the frame clock as seen by systems. It is written only between
// ticks and read-only while stages run.
type Time struct {
	Delta   float64
	Elapsed float64
	Frame   uint64
}

type World struct {
	entities entityStore
	stores   map[component.ComponentID]store

	commands CommandBuffer
	events   EventQueue
	triggers TriggerBuffer
	time     Time
}

func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]store),
	}
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return NoEntity
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e and retires its handle.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.entities()
}

// Commands returns the world's deferred mutation buffer.
func (w *World) Commands() *CommandBuffer {
	if w == nil {
		return nil
	}
	return &w.commands
}

// Events returns the queue observers drain after a tick.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Triggers returns the fixed-step trigger handoff between the physics
// producer and its consumers.
func (w *World) Triggers() *TriggerBuffer {
	if w == nil {
		return nil
	}
	return &w.triggers
}

func (w *World) Time() Time {
	if w == nil {
		return Time{}
	}
	return w.time
}

// beginTick advances the clock. Non-finite or negative deltas are recorded as
// given so systems can apply their own guards, but never advance Elapsed.
func (w *World) beginTick(dt float64) {
	w.time.Delta = dt
	w.time.Frame++
	if !math.IsNaN(dt) && !math.IsInf(dt, 0) && dt > 0 {
		w.time.Elapsed += dt
	}
	w.events.flush()
}

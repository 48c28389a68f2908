package ecs

import "sync"

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const EventCollected = "collected"

// CollectedEvent is published once per consumed collectible.
type CollectedEvent struct {
	Player      Entity
	Collectible Entity
	Kind        string
	Score       int
}

// EventQueue is a FIFO queue drained by observers after a tick. Producers may
// push from concurrent stages.
type EventQueue struct {
	mu    sync.Mutex
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, evt)
	q.mu.Unlock()
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// TriggerEvent is one trigger overlap reported by the physics producer. The
// order of A and B is unspecified.
type TriggerEvent struct {
	A Entity
	B Entity
}

// TriggerBuffer hands one fixed step's overlaps from the producer to the
// resolver. Publishing replaces whatever the previous step left behind, so a
// consumer that skips a step simply sees the next step's events.
type TriggerBuffer struct {
	mu     sync.Mutex
	events []TriggerEvent
}

func (b *TriggerBuffer) Publish(events []TriggerEvent) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.events = append(b.events[:0], events...)
	b.mu.Unlock()
}

// Take returns the current step's events and clears them.
func (b *TriggerBuffer) Take() []TriggerEvent {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	out := append([]TriggerEvent(nil), b.events...)
	b.events = b.events[:0]
	return out
}

// Peek returns a copy of the current step's events without consuming them.
func (b *TriggerBuffer) Peek() []TriggerEvent {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TriggerEvent(nil), b.events...)
}

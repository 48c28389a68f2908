package ecs

import (
	"sync"

	"github.com/milk9111/lanerunner/ecs/component"
)

// CommandBuffer collects structural mutations produced while stages run and
// applies them once every reader of the tick has finished. It is safe for
// concurrent producers; Playback must run on a single goroutine.
type CommandBuffer struct {
	mu       sync.Mutex
	destroys []Entity
	pending  map[Entity]struct{}
	deferred []func(w *World)
}

// Destroy queues e for destruction. It reports false when e was already
// queued, so callers can use it to claim an entity exactly once.
func (b *CommandBuffer) Destroy(e Entity) bool {
	if b == nil || !e.Valid() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil {
		b.pending = make(map[Entity]struct{})
	}
	if _, ok := b.pending[e]; ok {
		return false
	}
	b.pending[e] = struct{}{}
	b.destroys = append(b.destroys, e)
	return true
}

// DestroyPending reports whether e is queued for destruction.
func (b *CommandBuffer) DestroyPending(e Entity) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[e]
	return ok
}

// Defer queues fn to run at playback, before the queued destroys.
func (b *CommandBuffer) Defer(fn func(w *World)) {
	if b == nil || fn == nil {
		return
	}
	b.mu.Lock()
	b.deferred = append(b.deferred, fn)
	b.mu.Unlock()
}

// Len reports the number of queued commands.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.destroys) + len(b.deferred)
}

// Playback applies deferred mutations in submission order, then the queued
// destroys, and empties the buffer. It returns the number of entities that
// were actually destroyed.
func (b *CommandBuffer) Playback(w *World) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	deferred := b.deferred
	destroys := b.destroys
	b.deferred = nil
	b.destroys = nil
	b.pending = nil
	b.mu.Unlock()

	for _, fn := range deferred {
		fn(w)
	}

	destroyed := 0
	for _, e := range destroys {
		if DestroyEntity(w, e) {
			destroyed++
		}
	}
	return destroyed
}

// DeferAdd queues an Add. Entities that die before playback are skipped.
func DeferAdd[T any](b *CommandBuffer, e Entity, kind component.ComponentKind[T], value *T) {
	b.Defer(func(w *World) {
		_ = Add(w, e, kind, value)
	})
}

// DeferRemove queues a Remove.
func DeferRemove[T any](b *CommandBuffer, e Entity, kind component.ComponentKind[T]) {
	b.Defer(func(w *World) {
		Remove(w, e, kind)
	})
}

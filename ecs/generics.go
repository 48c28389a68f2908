package ecs

import "github.com/milk9111/lanerunner/ecs/component"

func storeOf[T any](w *World, kind component.ComponentKind[T]) *sparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		return nil
	}
	typed, _ := s.(*sparseSet[T])
	return typed
}

// Add attaches value to e, replacing any existing component of the same kind.
// Not safe to call while stages run concurrently; use the command buffer.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}

	s := storeOf(w, kind)
	if s == nil {
		s = newSparseSet[T]()
		w.stores[kind.ID()] = s
	}
	s.set(e, value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeOf(w, kind)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeOf(w, kind)
	return s != nil && s.has(e)
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := storeOf(w, kind)
	if s == nil {
		return false
	}
	return s.remove(e)
}

// Count reports how many entities carry kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	s := storeOf(w, kind)
	if s == nil {
		return 0
	}
	return s.size()
}

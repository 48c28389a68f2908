package ecs

import (
	"runtime"

	"github.com/milk9111/lanerunner/ecs/component"
	"golang.org/x/sync/errgroup"
)

// ForEach visits every live entity carrying kind. The entity list is
// snapshotted first, so fn may add or remove components.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := storeOf(w, kind)
	if s == nil || fn == nil {
		return
	}
	for _, e := range s.snapshot() {
		if !w.entities.isAlive(e) {
			continue
		}
		if v, ok := s.get(e); ok {
			fn(e, v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := storeOf(w, ka), storeOf(w, kb)
	if sa == nil || sb == nil || fn == nil {
		return
	}
	for _, e := range sa.snapshot() {
		if !w.entities.isAlive(e) {
			continue
		}
		a, ok := sa.get(e)
		if !ok {
			continue
		}
		b, ok := sb.get(e)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sc := storeOf(w, kc)
	if sc == nil {
		return
	}
	ForEach2(w, ka, kb, func(e Entity, a *A, b *B) {
		if c, ok := sc.get(e); ok {
			fn(e, a, b, c)
		}
	})
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	sd := storeOf(w, kd)
	if sd == nil {
		return
	}
	ForEach3(w, ka, kb, kc, func(e Entity, a *A, b *B, c *C) {
		if d, ok := sd.get(e); ok {
			fn(e, a, b, c, d)
		}
	})
}

// First returns the first live entity carrying kind. Singletons such as the
// score and the camera are resolved with it.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := storeOf(w, kind)
	if s == nil {
		return NoEntity, false
	}
	for _, e := range s.dense {
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return NoEntity, false
}

// Query returns the live entities carrying every listed kind.
func Query(w *World, kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}

	stores := make([]store, 0, len(kinds))
	for _, k := range kinds {
		s, ok := w.stores[k.ID()]
		if !ok || s == nil {
			return nil
		}
		stores = append(stores, s)
	}

	var out []Entity
	for _, e := range w.entities.entities() {
		match := true
		for _, s := range stores {
			if !s.has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// ParallelForEach3 runs fn over the matching entities split across at most
// workers goroutines and returns once every chunk has finished. fn must only
// touch the components it is handed; structural changes go through the
// command buffer.
func ParallelForEach3[A, B, C any](w *World, workers int, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	type row struct {
		e Entity
		a *A
		b *B
		c *C
	}

	var rows []row
	ForEach3(w, ka, kb, kc, func(e Entity, a *A, b *B, c *C) {
		rows = append(rows, row{e: e, a: a, b: b, c: c})
	})
	if len(rows) == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(rows) == 1 {
		for _, r := range rows {
			fn(r.e, r.a, r.b, r.c)
		}
		return
	}

	chunk := (len(rows) + workers - 1) / workers
	// errgroup only bounds the goroutines; fn cannot fail.
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += chunk {
		part := rows[start:min(start+chunk, len(rows))]
		g.Go(func() error {
			for _, r := range part {
				fn(r.e, r.a, r.b, r.c)
			}
			return nil
		})
	}
	g.Wait()
}

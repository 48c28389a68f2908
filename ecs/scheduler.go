package ecs

import (
	"math"
	"sync"
)

type System interface {
	Update(w *World)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// FixedSystem runs inside a FixedStep and receives the fixed delta.
type FixedSystem interface {
	FixedUpdate(w *World, dt float64)
}

type stage struct {
	name       string
	systems    []System
	concurrent bool
}

// Scheduler runs stages in order. Every stage is a barrier: the next stage
// starts only after all systems of the previous one returned. Structural
// mutations queued on the world's command buffer are played back after the
// last stage.
type Scheduler struct {
	stages []stage
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	if len(systems) > 0 {
		s.Stage("main", systems...)
	}
	return s
}

// Stage appends a stage whose systems run one after another.
func (s *Scheduler) Stage(name string, systems ...System) *Scheduler {
	s.stages = append(s.stages, stage{name: name, systems: compact(systems)})
	return s
}

// Concurrent appends a stage whose systems run on separate goroutines.
// They must not mutate world structure directly.
func (s *Scheduler) Concurrent(name string, systems ...System) *Scheduler {
	s.stages = append(s.stages, stage{name: name, systems: compact(systems), concurrent: true})
	return s
}

// Add appends system to the last stage, creating one if needed.
func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	if len(s.stages) == 0 {
		s.Stage("main")
	}
	last := &s.stages[len(s.stages)-1]
	last.systems = append(last.systems, system)
}

// Update runs one tick with frame delta dt.
func (s *Scheduler) Update(w *World, dt float64) {
	if w == nil {
		return
	}
	w.beginTick(dt)

	for _, st := range s.stages {
		if !st.concurrent || len(st.systems) < 2 {
			for _, system := range st.systems {
				system.Update(w)
			}
			continue
		}

		var wg sync.WaitGroup
		for _, system := range st.systems {
			wg.Add(1)
			go func() {
				defer wg.Done()
				system.Update(w)
			}()
		}
		wg.Wait()
	}

	w.commands.Playback(w)
}

func (s *Scheduler) Systems() []System {
	var systems []System
	for _, st := range s.stages {
		systems = append(systems, st.systems...)
	}
	return systems
}

// StageNames lists the stages in execution order.
func (s *Scheduler) StageNames() []string {
	names := make([]string, 0, len(s.stages))
	for _, st := range s.stages {
		names = append(names, st.name)
	}
	return names
}

func compact(systems []System) []System {
	out := make([]System, 0, len(systems))
	for _, system := range systems {
		if system != nil {
			out = append(out, system)
		}
	}
	return out
}

// FixedStep runs its systems zero or more times per frame with a constant
// delta, carrying the remainder to the next frame.
type FixedStep struct {
	step        float64
	maxSubsteps int
	systems     []FixedSystem

	accumulator float64
	steps       uint64
}

func NewFixedStep(step float64, maxSubsteps int, systems ...FixedSystem) *FixedStep {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = 1.0 / 50.0
	}
	if maxSubsteps <= 0 {
		maxSubsteps = 1
	}
	f := &FixedStep{step: step, maxSubsteps: maxSubsteps}
	for _, system := range systems {
		if system != nil {
			f.systems = append(f.systems, system)
		}
	}
	return f
}

func (f *FixedStep) Update(w *World) {
	dt := w.Time().Delta
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return
	}

	f.accumulator += dt
	n := 0
	for f.accumulator >= f.step && n < f.maxSubsteps {
		for _, system := range f.systems {
			system.FixedUpdate(w, f.step)
		}
		f.accumulator -= f.step
		f.steps++
		n++
	}

	// Drop the backlog instead of spiralling when a frame ran long.
	if f.accumulator >= f.step {
		f.accumulator = math.Mod(f.accumulator, f.step)
	}
}

func (f *FixedStep) Step() float64 { return f.step }

// Steps reports how many fixed steps have run in total.
func (f *FixedStep) Steps() uint64 { return f.steps }

// Alpha is the interpolation factor between the last two fixed steps.
func (f *FixedStep) Alpha() float64 { return f.accumulator / f.step }

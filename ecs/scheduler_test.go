package ecs

import (
	"math"
	"sync/atomic"
	"testing"
)

type countingFixed struct {
	calls int
	dts   []float64
}

func (c *countingFixed) FixedUpdate(_ *World, dt float64) {
	c.calls++
	c.dts = append(c.dts, dt)
}

func TestSchedulerStagesAreBarriers(t *testing.T) {
	w := NewWorld()
	var stage1Done atomic.Int32
	var violations atomic.Int32

	first := SystemFunc(func(*World) { stage1Done.Add(1) })
	check := SystemFunc(func(*World) {
		if stage1Done.Load() != 2 {
			violations.Add(1)
		}
	})

	s := NewScheduler().
		Concurrent("first", first, first).
		Concurrent("second", check, check, check)

	for i := 0; i < 20; i++ {
		stage1Done.Store(0)
		s.Update(w, 1.0/60.0)
	}
	if violations.Load() != 0 {
		t.Fatalf("second stage observed an unfinished first stage %d times", violations.Load())
	}
	if got := s.StageNames(); len(got) != 2 || got[0] != "first" {
		t.Fatalf("unexpected stage names %v", got)
	}
}

func TestSchedulerPlaysBackAfterAllStages(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	var aliveInLaterStage bool

	s := NewScheduler().
		Stage("produce", SystemFunc(func(w *World) { w.Commands().Destroy(e) })).
		Stage("read", SystemFunc(func(w *World) { aliveInLaterStage = IsAlive(w, e) }))
	s.Update(w, 0.016)

	if !aliveInLaterStage {
		t.Fatalf("destroy must not apply before the tick finished")
	}
	if IsAlive(w, e) {
		t.Fatalf("destroy should apply at end of tick")
	}
}

func TestSchedulerTime(t *testing.T) {
	w := NewWorld()
	s := NewScheduler()
	s.Update(w, 0.5)
	s.Update(w, math.NaN())
	s.Update(w, 0.25)

	tm := w.Time()
	if tm.Frame != 3 || tm.Elapsed != 0.75 || tm.Delta != 0.25 {
		t.Fatalf("unexpected time %+v", tm)
	}
}

func TestFixedStepAccumulates(t *testing.T) {
	tests := []struct {
		name      string
		step      float64
		max       int
		frames    []float64
		wantCalls int
	}{
		{"exact", 0.02, 5, []float64{0.02, 0.02}, 2},
		{"carry_remainder", 0.02, 5, []float64{0.015, 0.015, 0.015}, 2},
		{"capped", 0.02, 3, []float64{1.0}, 3},
		{"ignores_bad_delta", 0.02, 5, []float64{math.Inf(1), -1, 0}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWorld()
			sys := &countingFixed{}
			fixed := NewFixedStep(tc.step, tc.max, sys)
			s := NewScheduler(fixed)
			for _, dt := range tc.frames {
				s.Update(w, dt)
			}
			if sys.calls != tc.wantCalls {
				t.Fatalf("expected %d fixed updates, got %d", tc.wantCalls, sys.calls)
			}
			for _, dt := range sys.dts {
				if dt != tc.step {
					t.Fatalf("fixed systems must receive the fixed delta, got %v", dt)
				}
			}
			if fixed.Steps() != uint64(tc.wantCalls) {
				t.Fatalf("Steps() = %d", fixed.Steps())
			}
		})
	}
}

func TestFixedStepDropsBacklog(t *testing.T) {
	w := NewWorld()
	sys := &countingFixed{}
	fixed := NewFixedStep(0.02, 2, sys)
	s := NewScheduler(fixed)

	s.Update(w, 1.0)
	if sys.calls != 2 {
		t.Fatalf("expected capped substeps, got %d calls", sys.calls)
	}
	if a := fixed.Alpha(); a < 0 || a >= 1 {
		t.Fatalf("expected backlog below one step, alpha=%v", a)
	}
}

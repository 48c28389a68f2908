package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/common"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// LocomotionSystem advances every player once per frame. Players are
// independent, so they are updated in parallel.
type LocomotionSystem struct {
	workers int
}

// NewLocomotionSystem caps the number of goroutines at workers; zero uses
// GOMAXPROCS.
func NewLocomotionSystem(workers int) *LocomotionSystem {
	return &LocomotionSystem{workers: workers}
}

func (s *LocomotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Time().Delta

	ecs.ParallelForEach3(w, s.workers,
		component.PlayerComponent.Kind(),
		component.TransformComponent.Kind(),
		component.InputIntentComponent.Kind(),
		func(_ ecs.Entity, p *component.Player, t *component.Transform, in *component.InputIntent) {
			Advance(p, t, *in, dt)
		})
}

// Advance runs one locomotion tick for a single player.
func Advance(p *component.Player, t *component.Transform, in component.InputIntent, dt float64) {
	if p == nil || t == nil || !common.IsFinite(dt) || dt <= 0 {
		return
	}

	if !common.IsFiniteVec3(t.Position) {
		t.Position = mgl64.Vec3{}
	}
	cfg := p.Config

	offset := verticalFor(cfg.Policy)(&p.Vertical, cfg, in, dt)
	advanceLane(&p.Lane, cfg, in.LaneChange, dt)

	x := common.Lerp(float64(p.Lane.Current)*cfg.LaneWidth, float64(p.Lane.Target)*cfg.LaneWidth, p.Lane.Progress)
	next := mgl64.Vec3{x, offset, t.Position.Z() + cfg.MoveSpeed*dt}
	if common.IsFiniteVec3(next) {
		t.Position = next
	}

	p.DistanceTravelled += cfg.MoveSpeed * dt
	if p.PowerUp.Kind != component.PowerUpNone {
		p.PowerUp.Remaining -= dt
		if p.PowerUp.Remaining <= 0 {
			p.PowerUp = component.PowerUp{}
		}
	}
}

// advanceLane moves an in-flight transition forward, then accepts a new
// request only once the previous one has settled.
func advanceLane(l *component.LaneState, cfg component.PlayerConfig, dir int, dt float64) {
	l.Current = common.ClampInt(l.Current, component.MinLane, component.MaxLane)
	l.Target = common.ClampInt(l.Target, component.MinLane, component.MaxLane)
	if !common.IsFinite(l.Progress) {
		l.Progress = 0
	}
	l.Progress = common.Clamp01(l.Progress)

	if l.Current != l.Target {
		if cfg.LaneChangeSpeed > 0 {
			l.Progress += cfg.LaneChangeSpeed * dt
		} else {
			l.Progress = 1
		}
		if l.Progress >= 1 {
			l.Progress = 1
			l.Current = l.Target
		}
	} else {
		l.Progress = 1
	}

	if dir == 0 || !l.Settled() {
		return
	}
	if dir < 0 {
		dir = -1
	} else {
		dir = 1
	}

	target := common.ClampInt(l.Current+dir, component.MinLane, component.MaxLane)
	if target != l.Target {
		l.Target = target
		l.Progress = 0
	}
}

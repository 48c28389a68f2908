package system

import (
	"log/slog"

	"github.com/milk9111/lanerunner/ecs"
)

type PipelineConfig struct {
	// FixedStep is the physics and trigger resolution step in seconds.
	FixedStep   float64
	MaxSubsteps int
	// Workers bounds the goroutines used for per-player locomotion.
	Workers    int
	CameraSeed uint64
	MinSwipe   float64
	// CullBehind retires collectibles this far behind the runner; 0 keeps
	// them.
	CullBehind float64

	Input         RawInputSource
	CameraSpawner CameraSpawner
	Tags          TagLookup
	Logger        *slog.Logger
}

// Pipeline is the per-tick schedule: camera setup and culling, input, locomotion, then
// the camera and the fixed-step trigger group side by side. Structural
// changes are played back once both have finished.
type Pipeline struct {
	Scheduler   *ecs.Scheduler
	Fixed       *ecs.FixedStep
	Physics     *PhysicsSystem
	Collectible *CollectibleSystem
	Camera      *CameraSystem
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	physics := NewPhysicsSystem()
	collectibles := NewCollectibleSystem(cfg.Tags, logger)
	camera := NewCameraSystem(cfg.CameraSeed, logger)
	fixed := ecs.NewFixedStep(cfg.FixedStep, cfg.MaxSubsteps, physics, collectibles)

	input := NewInputSystem(cfg.Input)
	if cfg.MinSwipe > 0 {
		input.WithMinSwipe(cfg.MinSwipe)
	}

	sched := ecs.NewScheduler().
		Stage("setup", NewCameraInitSystem(cfg.CameraSpawner, logger), NewCullSystem(cfg.CullBehind)).
		Stage("input", input).
		Stage("locomotion", NewLocomotionSystem(cfg.Workers)).
		Concurrent("follow", camera, fixed)

	return &Pipeline{
		Scheduler:   sched,
		Fixed:       fixed,
		Physics:     physics,
		Collectible: collectibles,
		Camera:      camera,
	}
}

func (p *Pipeline) Update(w *ecs.World, dt float64) {
	p.Scheduler.Update(w, dt)
}

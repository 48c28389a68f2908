package system

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// CameraSpawner creates a camera bound to target.
type CameraSpawner func(w *ecs.World, target ecs.Entity) (ecs.Entity, error)

// CameraInitSystem makes sure a camera follows the player: it binds unbound
// cameras to the first player and, when no camera exists at all, spawns one.
// It creates entities, so it must run in a sequential stage.
type CameraInitSystem struct {
	spawn  CameraSpawner
	logger *slog.Logger
}

func NewCameraInitSystem(spawn CameraSpawner, logger *slog.Logger) *CameraInitSystem {
	if spawn == nil {
		spawn = SpawnDefaultCamera
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraInitSystem{spawn: spawn, logger: logger}
}

func (s *CameraInitSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}

	cameras := 0
	ecs.ForEach(w, component.CameraFollowComponent.Kind(), func(e ecs.Entity, follow *component.CameraFollow) {
		cameras++
		if !ecs.IsAlive(w, ecs.Entity(follow.Target)) && follow.State == component.CameraUninitialized {
			follow.Target = uint64(player)
		}
	})
	if cameras > 0 {
		return
	}

	cam, err := s.spawn(w, player)
	if err != nil {
		s.logger.Error("camera spawn failed", "err", err)
		return
	}
	s.logger.Info("camera created", "camera", cam, "player", player)
}

// Built-in camera defaults, used when no camera prefab is available.
var (
	DefaultCameraOffset      = mgl64.Vec3{0, 8, -12}
	DefaultCameraMinPosition = mgl64.Vec3{-50, 2, -1000}
	DefaultCameraMaxPosition = mgl64.Vec3{50, 50, 1000}
)

const (
	DefaultCameraPositionRate = 8.0
	DefaultCameraRotationRate = 5.0
	DefaultCameraZoom         = 3.0
	DefaultCameraMinDistance  = 5.0
	DefaultCameraMaxDistance  = 30.0
)

// SpawnDefaultCamera creates a third person camera with the built-in defaults.
func SpawnDefaultCamera(w *ecs.World, target ecs.Entity) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)

	if err := ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: DefaultCameraOffset,
		Rotation: mgl64.QuatIdent(),
		Scale:    1,
	}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraFollowComponent.Kind(), &component.CameraFollow{
		Target:   uint64(target),
		Offset:   DefaultCameraOffset,
		ViewMode: component.ViewThirdPerson,
	}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraTargetPoseComponent.Kind(), &component.CameraTargetPose{Rotation: mgl64.QuatIdent()}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraSmoothingComponent.Kind(), &component.CameraSmoothing{
		PositionRate: DefaultCameraPositionRate,
		RotationRate: DefaultCameraRotationRate,
		Enabled:      true,
	}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraConstraintsComponent.Kind(), &component.CameraConstraints{
		MinPosition: DefaultCameraMinPosition,
		MaxPosition: DefaultCameraMaxPosition,
		MinDistance: DefaultCameraMinDistance,
		MaxDistance: DefaultCameraMaxDistance,
		Enabled:     true,
	}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraShakeComponent.Kind(), &component.CameraShake{}); err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.CameraLensComponent.Kind(), &component.CameraLens{FOV: 60, Zoom: DefaultCameraZoom}); err != nil {
		return e, err
	}
	return e, nil
}

package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/prefabs"
)

// NewCamera builds a camera from a prefab and binds it to target. The
// transform starts at the target plus the follow offset so the first frame is
// already framed.
func NewCamera(w *ecs.World, prefabPath string, target ecs.Entity) (ecs.Entity, error) {
	camera, err := BuildEntity(w, prefabPath)
	if err != nil {
		return 0, fmt.Errorf("camera: %w", err)
	}

	follow, ok := ecs.Get(w, camera, component.CameraFollowComponent.Kind())
	if !ok {
		ecs.DestroyEntity(w, camera)
		return 0, fmt.Errorf("camera: prefab %q has no camera_follow", prefabPath)
	}
	follow.Target = uint64(target)

	if tt, ok := ecs.Get(w, target, component.TransformComponent.Kind()); ok {
		if err := SetEntityPosition(w, camera, tt.Position.Add(follow.Offset)); err != nil {
			return 0, fmt.Errorf("camera: place: %w", err)
		}
	}
	return camera, nil
}

// CameraSpawner adapts NewCamera to the camera init system's spawner hook.
func CameraSpawner(prefabPath string) func(w *ecs.World, target ecs.Entity) (ecs.Entity, error) {
	return func(w *ecs.World, target ecs.Entity) (ecs.Entity, error) {
		return NewCamera(w, prefabPath, target)
	}
}

func addCameraFollow(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraFollowComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera follow spec: %w", err)
	}
	return ecs.Add(w, e, component.CameraFollowComponent.Kind(), &component.CameraFollow{
		Offset:   spec.Offset.Vec3(),
		ViewMode: component.ParseViewMode(spec.ViewMode),
		State:    component.CameraUninitialized,
	})
}

func addCameraTargetPose(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTargetPoseComponent.Kind(), &component.CameraTargetPose{Rotation: mgl64.QuatIdent()})
}

func addCameraSmoothing(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraSmoothingComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera smoothing spec: %w", err)
	}
	return ecs.Add(w, e, component.CameraSmoothingComponent.Kind(), &component.CameraSmoothing{
		PositionRate:  spec.PositionRate,
		RotationRate:  spec.RotationRate,
		Enabled:       spec.Enabled,
		SnapOnAcquire: spec.SnapOnAcquire,
	})
}

func addCameraConstraints(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraConstraintsComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera constraints spec: %w", err)
	}
	return ecs.Add(w, e, component.CameraConstraintsComponent.Kind(), &component.CameraConstraints{
		MinPosition:   spec.MinPosition.Vec3(),
		MaxPosition:   spec.MaxPosition.Vec3(),
		MinDistance:   spec.MinDistance,
		MaxDistance:   spec.MaxDistance,
		ClampDistance: spec.ClampDistance,
		Enabled:       spec.Enabled,
	})
}

func addCameraShake(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraShakeComponent.Kind(), &component.CameraShake{})
}

func addCameraRig(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraRigComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera rig spec: %w", err)
	}
	forward := spec.ForwardSign
	if forward == 0 {
		forward = 1
	}
	return ecs.Add(w, e, component.CameraRigComponent.Kind(), &component.CameraRig{
		FollowDistance:   spec.FollowDistance,
		Height:           spec.Height,
		LookAhead:        spec.LookAhead,
		LateralLookAhead: spec.LateralLookAhead,
		MaxTilt:          spec.MaxTilt,
		TiltRate:         spec.TiltRate,
		ForwardSign:      forward,
		MinFOV:           spec.MinFOV,
		MaxFOV:           spec.MaxFOV,
		SpeedForMaxFOV:   spec.SpeedForMaxFOV,
		FOVRate:          spec.FOVRate,
	})
}

func addCameraLens(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraLensComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera lens spec: %w", err)
	}
	fov := spec.FOV
	if fov == 0 {
		fov = 60
	}
	zoom := spec.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return ecs.Add(w, e, component.CameraLensComponent.Kind(), &component.CameraLens{FOV: fov, Zoom: zoom})
}

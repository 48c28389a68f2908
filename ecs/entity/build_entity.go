package entity

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":         addPlayerTag,
	"camera_tag":         addCameraTag,
	"collectible_tag":    addCollectibleTag,
	"transform":          addTransform,
	"player":             addPlayer,
	"input_intent":       addInputIntent,
	"collectible":        addCollectible,
	"score":              addScore,
	"trigger_volume":     addTriggerVolume,
	"collision_layer":    addCollisionLayer,
	"camera_follow":      addCameraFollow,
	"camera_target_pose": addCameraTargetPose,
	"camera_smoothing":   addCameraSmoothing,
	"camera_constraints": addCameraConstraints,
	"camera_shake":       addCameraShake,
	"camera_rig":         addCameraRig,
	"camera_lens":        addCameraLens,
}

// Tags first, then the transform so later builders can read it.
var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"collectible_tag",
	"transform",
	"player",
	"input_intent",
	"collectible",
	"score",
	"trigger_volume",
	"collision_layer",
	"camera_follow",
	"camera_target_pose",
	"camera_smoothing",
	"camera_constraints",
	"camera_shake",
	"camera_rig",
	"camera_lens",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec)
}

func BuildEntityFromSpec(w *ecs.World, prefabPath string, spec prefabs.EntityBuildSpec) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string, raw any) error {
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		return nil
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := build(name, raw); err != nil {
			return 0, err
		}
		delete(remaining, name)
	}

	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := build(name, remaining[name]); err != nil {
			return 0, err
		}
	}

	return e, nil
}

// SetEntityPosition moves an entity, adding an identity transform when it has
// none.
func SetEntityPosition(w *ecs.World, e ecs.Entity, pos mgl64.Vec3) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{Rotation: mgl64.QuatIdent(), Scale: 1}
	}
	t.Position = pos
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{})
}

func addCollectibleTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
}

func addInputIntent(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputIntentComponent.Kind(), &component.InputIntent{})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: mgl64.Vec3{spec.X, spec.Y, spec.Z},
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(spec.Yaw), mgl64.Vec3{0, 1, 0}),
		Scale:    scale,
	})
}

func addPlayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PlayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode player spec: %w", err)
	}

	policy := component.VerticalVelocity
	if spec.Policy == "parabolic" {
		policy = component.VerticalParabolic
	}

	return ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{
		Config: component.PlayerConfig{
			MoveSpeed:       spec.MoveSpeed,
			LaneWidth:       spec.LaneWidth,
			LaneChangeSpeed: spec.LaneChangeSpeed,
			Policy:          policy,
			JumpForce:       spec.JumpForce,
			Gravity:         spec.Gravity,
			JumpHeight:      spec.JumpHeight,
			JumpDuration:    spec.JumpDuration,
			SlideDepth:      spec.SlideDepth,
			SlideDuration:   spec.SlideDuration,
		},
		Lane: component.LaneState{Current: spec.StartLane, Target: spec.StartLane, Progress: 1},
	})
}

func addCollectible(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CollectibleComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collectible spec: %w", err)
	}
	kind, err := parseCollectibleKind(spec.Kind)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.CollectibleComponent.Kind(), &component.Collectible{
		Kind:            kind,
		PowerUpDuration: spec.PowerUpDuration,
	})
}

func parseCollectibleKind(s string) (component.CollectibleKind, error) {
	switch s {
	case "coin":
		return component.CollectibleCoin, nil
	case "magnet":
		return component.CollectibleMagnet, nil
	case "invincibility":
		return component.CollectibleInvincibility, nil
	default:
		return 0, fmt.Errorf("unknown collectible kind %q", s)
	}
}

func addScore(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScoreComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode score spec: %w", err)
	}
	return ecs.Add(w, e, component.ScoreComponent.Kind(), &component.Score{Value: spec.Value})
}

func addTriggerVolume(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TriggerVolumeComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode trigger volume spec: %w", err)
	}
	return ecs.Add(w, e, component.TriggerVolumeComponent.Kind(), &component.TriggerVolume{
		Radius: spec.Radius,
		Bottom: spec.Bottom,
		Top:    spec.Top,
		Sensor: spec.Sensor,
	})
}

func addCollisionLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CollisionLayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collision layer spec: %w", err)
	}
	cat := spec.Category
	mask := spec.Mask
	if cat == 0 {
		cat = 1
	}
	if mask == 0 {
		mask = ^uint32(0)
	}
	return ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{Category: cat, Mask: mask})
}

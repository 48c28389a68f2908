package entity

import (
	"fmt"
	"math/rand/v2"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/prefabs"
)

// TrackItem is one collectible placement produced by a track script.
type TrackItem struct {
	Kind string  `yaml:"kind"`
	Lane int     `yaml:"lane"`
	Z    float64 `yaml:"z"`
	Y    float64 `yaml:"y"`
}

type TrackParams struct {
	Script  string
	Seed    uint64
	Start   float64
	Length  float64
	Spacing float64
	// LaneWidth converts lane indices to X.
	LaneWidth float64
}

// GenerateTrack runs the track script for one segment. The same params always
// yield the same items.
func GenerateTrack(params TrackParams) ([]TrackItem, error) {
	src, err := prefabs.LoadScript(params.Script)
	if err != nil {
		return nil, fmt.Errorf("track: load script %q: %w", params.Script, err)
	}

	// Segments are seeded by their start so regenerating one is stable.
	rng := rand.New(rand.NewPCG(params.Seed, uint64(int64(params.Start))))

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	inputs := map[string]any{
		"start":    params.Start,
		"length":   params.Length,
		"spacing":  params.Spacing,
		"min_lane": component.MinLane,
		"max_lane": component.MaxLane,
		"intn":     scriptIntn(rng),
	}
	for name, v := range inputs {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("track: add %q: %w", name, err)
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("track: compile %q: %w", params.Script, err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("track: run %q: %w", params.Script, err)
	}

	if !compiled.IsDefined("items") {
		return nil, fmt.Errorf("track: script %q does not define items", params.Script)
	}
	items, err := prefabs.DecodeComponentSpec[[]TrackItem](compiled.Get("items").Value())
	if err != nil {
		return nil, fmt.Errorf("track: decode items: %w", err)
	}

	for i, item := range items {
		if _, err := parseCollectibleKind(item.Kind); err != nil {
			return nil, fmt.Errorf("track: item %d: %w", i, err)
		}
		if item.Lane < component.MinLane || item.Lane > component.MaxLane {
			return nil, fmt.Errorf("track: item %d: lane %d out of range", i, item.Lane)
		}
	}
	return items, nil
}

func scriptIntn(rng *rand.Rand) *tengo.UserFunction {
	return &tengo.UserFunction{Name: "intn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		n, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "n", Expected: "int", Found: args[0].TypeName()}
		}
		if n <= 0 {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: int64(rng.IntN(n))}, nil
	}}
}

// SpawnTrack generates a segment and builds a collectible for every item,
// using the prefab named after the item's kind.
func SpawnTrack(w *ecs.World, params TrackParams) ([]ecs.Entity, error) {
	items, err := GenerateTrack(params)
	if err != nil {
		return nil, err
	}

	specs := make(map[string]prefabs.EntityBuildSpec)
	spawned := make([]ecs.Entity, 0, len(items))
	for _, item := range items {
		prefab := item.Kind + ".yaml"
		spec, ok := specs[prefab]
		if !ok {
			spec, err = prefabs.LoadEntityBuildSpec(prefab)
			if err != nil {
				return spawned, fmt.Errorf("track: %w", err)
			}
			specs[prefab] = spec
		}

		e, err := BuildEntityFromSpec(w, prefab, spec)
		if err != nil {
			return spawned, fmt.Errorf("track: %w", err)
		}
		pos := mgl64.Vec3{float64(item.Lane) * params.LaneWidth, item.Y, item.Z}
		if err := SetEntityPosition(w, e, pos); err != nil {
			return spawned, fmt.Errorf("track: place %s: %w", item.Kind, err)
		}
		spawned = append(spawned, e)
	}
	return spawned, nil
}

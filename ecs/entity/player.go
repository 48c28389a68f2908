package entity

import (
	"fmt"

	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// NewPlayer builds a runner from a prefab and places it on its start lane.
func NewPlayer(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	player, err := BuildEntity(w, prefabPath)
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}

	p, ok := ecs.Get(w, player, component.PlayerComponent.Kind())
	if !ok {
		ecs.DestroyEntity(w, player)
		return 0, fmt.Errorf("player: prefab %q has no player component", prefabPath)
	}
	if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		t.Position[0] = float64(p.Lane.Current) * p.Config.LaneWidth
	}
	return player, nil
}

func NewScore(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	score, err := BuildEntity(w, prefabPath)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	if !ecs.Has(w, score, component.ScoreComponent.Kind()) {
		ecs.DestroyEntity(w, score)
		return 0, fmt.Errorf("score: prefab %q has no score component", prefabPath)
	}
	return score, nil
}

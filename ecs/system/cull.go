package system

import (
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// CullSystem retires collectibles the runner has left behind. Destruction is
// queued on the command buffer, so a culled collectible can no longer be
// consumed in the same tick.
type CullSystem struct {
	behind float64
}

// NewCullSystem culls collectibles more than behind units behind the player
// along Z. A non-positive distance disables culling.
func NewCullSystem(behind float64) *CullSystem {
	return &CullSystem{behind: behind}
}

func (s *CullSystem) Update(w *ecs.World) {
	if w == nil || s.behind <= 0 {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	pt, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	limit := pt.Position.Z() - s.behind

	cb := w.Commands()
	ecs.ForEach2(w, component.CollectibleTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.CollectibleTag, t *component.Transform) {
		if t.Position.Z() < limit {
			cb.Destroy(e)
		}
	})
}

package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeCollectible
	collisionTypeObstacle
)

// PhysicsSystem produces trigger overlaps for the fixed step. Chipmunk works
// on the track plane: cp X is world X and cp Y is world Z. The vertical extent
// of each volume is checked after the step.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity

	contacts map[ecs.TriggerEvent]struct{}
	pending  []ecs.TriggerEvent
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	static bool
	player bool
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:    newTrackSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]ecs.Entity),
		contacts: make(map[ecs.TriggerEvent]struct{}),
	}
}

func newTrackSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// FixedUpdate steps the space by dt and publishes this step's overlaps.
func (ps *PhysicsSystem) FixedUpdate(w *ecs.World, dt float64) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.space = newTrackSpace()
		ps.handlersReady = false
	}

	ps.ensureHandlers()
	ps.cleanupEntities(w)
	ps.syncEntities(w)

	clear(ps.contacts)
	ps.pending = ps.pending[:0]
	ps.space.Step(dt)

	w.Triggers().Publish(ps.verticalOverlaps(w))
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	// Sensors never build contacts, but pre-solve still runs every step the
	// shapes overlap.
	handler := ps.space.NewCollisionHandler(collisionTypePlayer, collisionTypeCollectible)
	handler.UserData = ps
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		a, okA := sys.shapes[shapeA]
		b, okB := sys.shapes[shapeB]
		if !okA || !okB {
			return true
		}
		ev := ecs.TriggerEvent{A: a, B: b}
		if _, dup := sys.contacts[ev]; !dup {
			sys.contacts[ev] = struct{}{}
			sys.pending = append(sys.pending, ev)
		}
		return true
	}

	ps.handlersReady = true
}

// verticalOverlaps keeps the pairs whose vertical extents intersect.
func (ps *PhysicsSystem) verticalOverlaps(w *ecs.World) []ecs.TriggerEvent {
	out := make([]ecs.TriggerEvent, 0, len(ps.pending))
	for _, ev := range ps.pending {
		if verticalExtentsOverlap(w, ev.A, ev.B) {
			out = append(out, ev)
		}
	}
	return out
}

func verticalExtentsOverlap(w *ecs.World, a, b ecs.Entity) bool {
	aLo, aHi, ok := verticalExtent(w, a)
	if !ok {
		return false
	}
	bLo, bHi, ok := verticalExtent(w, b)
	if !ok {
		return false
	}
	return aLo <= bHi && bLo <= aHi
}

func verticalExtent(w *ecs.World, e ecs.Entity) (float64, float64, bool) {
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	vol, ok := ecs.Get(w, e, component.TriggerVolumeComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	y := tr.Position.Y()
	return y + vol.Bottom, y + vol.Top, true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	cb := w.Commands()
	ecs.ForEach2(w, component.TriggerVolumeComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, vol *component.TriggerVolume, tr *component.Transform) {
		if cb.DestroyPending(e) {
			return
		}
		info, ok := ps.entities[e]
		if !ok {
			info = ps.createBody(w, e, *vol, *tr)
			if info == nil {
				return
			}
			ps.entities[e] = info
			ps.shapes[info.shape] = e
		}
		if info.static {
			return
		}

		info.body.SetPosition(cp.Vector{X: tr.Position.X(), Y: tr.Position.Z()})
		info.body.SetVelocity(0, 0)
		info.body.SetAngle(0)
		info.body.SetAngularVelocity(0)
	})
}

func (ps *PhysicsSystem) createBody(w *ecs.World, e ecs.Entity, vol component.TriggerVolume, tr component.Transform) *bodyInfo {
	if vol.Radius <= 0 || ps.space == nil {
		return nil
	}

	isPlayer := ecs.Has(w, e, component.PlayerTagComponent.Kind())
	isCollectible := ecs.Has(w, e, component.CollectibleTagComponent.Kind())
	center := cp.Vector{X: tr.Position.X(), Y: tr.Position.Z()}

	info := &bodyInfo{player: isPlayer}
	if isPlayer {
		body := cp.NewBody(1, cp.INFINITY)
		body.SetPosition(center)
		ps.space.AddBody(body)
		info.body = body
		info.shape = cp.NewCircle(body, vol.Radius, cp.Vector{})
		info.shape.SetCollisionType(collisionTypePlayer)
	} else {
		info.static = true
		info.body = ps.space.StaticBody
		info.shape = cp.NewCircle(ps.space.StaticBody, vol.Radius, center)
		if isCollectible {
			info.shape.SetCollisionType(collisionTypeCollectible)
		} else {
			info.shape.SetCollisionType(collisionTypeObstacle)
		}
	}

	info.shape.SetSensor(vol.Sensor)
	info.shape.SetFilter(shapeFilter(w, e, isPlayer, isCollectible))
	ps.space.AddShape(info.shape)
	return info
}

func shapeFilter(w *ecs.World, e ecs.Entity, isPlayer, isCollectible bool) cp.ShapeFilter {
	category, mask := component.LayerObstacle, component.LayerPlayer
	switch {
	case isPlayer:
		category = component.LayerPlayer
		mask = component.LayerCollectible | component.LayerObstacle | component.LayerGround
	case isCollectible:
		category, mask = component.LayerCollectible, component.LayerPlayer
	}

	if layer, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind()); ok {
		if layer.Category != 0 {
			category = layer.Category
		}
		if layer.Mask != 0 {
			mask = layer.Mask
		}
	}
	return cp.NewShapeFilter(cp.NO_GROUP, uint(category), uint(mask))
}

// cleanupEntities removes shapes whose owner died, lost its volume, or is
// queued for destruction, so a consumed collectible stops reporting in later
// substeps of the same frame.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	cb := w.Commands()
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.TriggerVolumeComponent.Kind()) && !cb.DestroyPending(e) {
			continue
		}

		if info.shape != nil && ps.space != nil {
			ps.space.RemoveShape(info.shape)
			delete(ps.shapes, info.shape)
		}
		if info.body != nil && !info.static && ps.space != nil {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}

// BodyCount reports how many volumes are registered with the space.
func (ps *PhysicsSystem) BodyCount() int {
	return len(ps.entities)
}

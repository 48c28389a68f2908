package system

import (
	"log/slog"

	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// TagLookup classifies the two sides of a trigger overlap.
type TagLookup interface {
	IsPlayer(e ecs.Entity) bool
	IsCollectible(e ecs.Entity) bool
}

// worldTags answers tag queries from component presence.
type worldTags struct {
	w *ecs.World
}

func WorldTags(w *ecs.World) TagLookup {
	return worldTags{w: w}
}

func (t worldTags) IsPlayer(e ecs.Entity) bool {
	return ecs.Has(t.w, e, component.PlayerTagComponent.Kind())
}

func (t worldTags) IsCollectible(e ecs.Entity) bool {
	return ecs.Has(t.w, e, component.CollectibleTagComponent.Kind())
}

// Power-up pickups shake the camera briefly.
const (
	powerUpShakeDuration  = 0.25
	powerUpShakeIntensity = 0.15
)

// CollectibleSystem turns player/collectible overlaps of one fixed step into
// score. Each collectible is consumed at most once: its destruction is
// queued on the command buffer, and a queued destroy counts as consumed for
// every later step until playback.
type CollectibleSystem struct {
	tags   TagLookup
	logger *slog.Logger
}

// NewCollectibleSystem uses tags to classify overlaps; nil classifies by the
// PlayerTag and CollectibleTag components.
func NewCollectibleSystem(tags TagLookup, logger *slog.Logger) *CollectibleSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectibleSystem{tags: tags, logger: logger}
}

func (s *CollectibleSystem) FixedUpdate(w *ecs.World, _ float64) {
	if w == nil {
		return
	}
	// Without a score the step is skipped and its events are left in place;
	// the next publish replaces them.
	if _, ok := ecs.First(w, component.ScoreComponent.Kind()); !ok {
		s.logger.Debug("score not ready, skipping trigger resolution")
		return
	}
	s.ResolveTriggers(w, w.Triggers().Take())
}

type consumption struct {
	player      ecs.Entity
	collectible ecs.Entity
	kind        component.CollectibleKind
}

// ResolveTriggers consumes every player/collectible pair in events and
// returns how many collectibles were consumed. The score is written once,
// after the scan.
func (s *CollectibleSystem) ResolveTriggers(w *ecs.World, events []ecs.TriggerEvent) int {
	scoreEnt, ok := ecs.First(w, component.ScoreComponent.Kind())
	if !ok {
		return 0
	}
	score, ok := ecs.Get(w, scoreEnt, component.ScoreComponent.Kind())
	if !ok {
		return 0
	}

	tags := s.tags
	if tags == nil {
		tags = WorldTags(w)
	}
	cb := w.Commands()

	seen := make(map[ecs.Entity]struct{}, len(events))
	var consumed []consumption

	for _, ev := range events {
		player, item, ok := classifyPair(tags, ev)
		if !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}

		if !ecs.IsAlive(w, item) || !cb.Destroy(item) {
			continue
		}

		kind := component.CollectibleCoin
		var duration float64
		if c, ok := ecs.Get(w, item, component.CollectibleComponent.Kind()); ok {
			kind = c.Kind
			duration = c.PowerUpDuration
		}
		consumed = append(consumed, consumption{player: player, collectible: item, kind: kind})

		if pu := kind.PowerUp(); pu != component.PowerUpNone {
			s.deferPowerUp(cb, player, pu, duration)
		}
	}

	if len(consumed) == 0 {
		return 0
	}
	score.Value += len(consumed)

	for _, c := range consumed {
		s.logger.Debug("collected", "player", c.player, "collectible", c.collectible, "kind", c.kind, "score", score.Value)
		w.Events().Push(ecs.Event{
			Type: ecs.EventCollected,
			Data: ecs.CollectedEvent{
				Player:      c.player,
				Collectible: c.collectible,
				Kind:        c.kind.String(),
				Score:       score.Value,
			},
		})
	}
	return len(consumed)
}

func classifyPair(tags TagLookup, ev ecs.TriggerEvent) (player, item ecs.Entity, ok bool) {
	switch {
	case tags.IsPlayer(ev.A) && tags.IsCollectible(ev.B):
		return ev.A, ev.B, true
	case tags.IsPlayer(ev.B) && tags.IsCollectible(ev.A):
		return ev.B, ev.A, true
	default:
		return ecs.NoEntity, ecs.NoEntity, false
	}
}

// deferPowerUp starts the player's power-up timer and shakes every camera
// once the tick's readers are done.
func (s *CollectibleSystem) deferPowerUp(cb *ecs.CommandBuffer, player ecs.Entity, kind component.PowerUpKind, duration float64) {
	cb.Defer(func(w *ecs.World) {
		if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok && duration > 0 {
			p.PowerUp = component.PowerUp{Kind: kind, Remaining: duration}
		}
		ecs.ForEach(w, component.CameraTagComponent.Kind(), func(cam ecs.Entity, _ *component.CameraTag) {
			_ = ecs.Add(w, cam, component.CameraShakeRequestComponent.Kind(), &component.CameraShakeRequest{
				Duration:  powerUpShakeDuration,
				Intensity: powerUpShakeIntensity,
			})
		})
	})
}

package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

type resolverFixture struct {
	w      *ecs.World
	player ecs.Entity
	score  ecs.Entity
	sys    *CollectibleSystem
}

func newResolverFixture(t *testing.T, withScore bool) *resolverFixture {
	t.Helper()
	w := ecs.NewWorld()

	player := ecs.CreateEntity(w)
	_ = ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	_ = ecs.Add(w, player, component.PlayerComponent.Kind(), &component.Player{Config: runnerConfig()})

	f := &resolverFixture{w: w, player: player, sys: NewCollectibleSystem(nil, quietLogger())}
	if withScore {
		f.addScore(t)
	}
	return f
}

func (f *resolverFixture) addScore(t *testing.T) {
	t.Helper()
	f.score = ecs.CreateEntity(f.w)
	if err := ecs.Add(f.w, f.score, component.ScoreComponent.Kind(), &component.Score{}); err != nil {
		t.Fatal(err)
	}
}

func (f *resolverFixture) collectible(kind component.CollectibleKind) ecs.Entity {
	e := ecs.CreateEntity(f.w)
	_ = ecs.Add(f.w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
	_ = ecs.Add(f.w, e, component.CollectibleComponent.Kind(), &component.Collectible{Kind: kind, PowerUpDuration: 5})
	return e
}

func (f *resolverFixture) scoreValue(t *testing.T) int {
	t.Helper()
	s, ok := ecs.Get(f.w, f.score, component.ScoreComponent.Kind())
	if !ok {
		t.Fatal("score missing")
	}
	return s.Value
}

func TestResolveTriggersConsumesOnce(t *testing.T) {
	f := newResolverFixture(t, true)
	coin := f.collectible(component.CollectibleCoin)

	events := []ecs.TriggerEvent{
		{A: f.player, B: coin},
		{A: coin, B: f.player},
		{A: f.player, B: coin},
	}
	if n := f.sys.ResolveTriggers(f.w, events); n != 1 {
		t.Fatalf("expected 1 consumption, got %d", n)
	}
	if got := f.scoreValue(t); got != 1 {
		t.Fatalf("expected score 1, got %d", got)
	}
	if !ecs.IsAlive(f.w, coin) {
		t.Fatal("destruction must be deferred until playback")
	}

	// Same collectible reported again by a later fixed step of the frame.
	if n := f.sys.ResolveTriggers(f.w, events); n != 0 {
		t.Fatalf("pending destroy must count as consumed, got %d", n)
	}
	if got := f.scoreValue(t); got != 1 {
		t.Fatalf("expected score to stay 1, got %d", got)
	}

	f.w.Commands().Playback(f.w)
	if ecs.IsAlive(f.w, coin) {
		t.Fatal("collectible should be destroyed at playback")
	}
	if n := f.sys.ResolveTriggers(f.w, events); n != 0 {
		t.Fatalf("dead collectible must not score, got %d", n)
	}
}

func TestResolveTriggersScoreMonotonic(t *testing.T) {
	for _, k := range []int{0, 1, 5, 17} {
		f := newResolverFixture(t, true)
		var events []ecs.TriggerEvent
		for i := 0; i < k; i++ {
			events = append(events, ecs.TriggerEvent{A: f.player, B: f.collectible(component.CollectibleCoin)})
		}

		prev := 0
		for _, ev := range events {
			f.sys.ResolveTriggers(f.w, []ecs.TriggerEvent{ev})
			got := f.scoreValue(t)
			if got < prev {
				t.Fatalf("score decreased from %d to %d", prev, got)
			}
			prev = got
		}
		if prev != k {
			t.Fatalf("expected score %d, got %d", k, prev)
		}
	}
}

func TestResolveTriggersIgnoresOtherPairs(t *testing.T) {
	f := newResolverFixture(t, true)
	a := f.collectible(component.CollectibleCoin)
	b := f.collectible(component.CollectibleCoin)
	other := ecs.CreateEntity(f.w)

	events := []ecs.TriggerEvent{
		{A: a, B: b},
		{A: f.player, B: f.player},
		{A: f.player, B: other},
		{A: other, B: a},
		{A: f.player, B: ecs.NoEntity},
	}
	if n := f.sys.ResolveTriggers(f.w, events); n != 0 {
		t.Fatalf("expected no consumption, got %d", n)
	}
	if f.w.Commands().Len() != 0 {
		t.Fatal("nothing should be queued")
	}
}

func TestCollectibleSystemSkipsWithoutScore(t *testing.T) {
	f := newResolverFixture(t, false)
	first := f.collectible(component.CollectibleCoin)
	second := f.collectible(component.CollectibleCoin)

	f.w.Triggers().Publish([]ecs.TriggerEvent{{A: f.player, B: first}})
	f.sys.FixedUpdate(f.w, 0.02)
	if f.w.Commands().DestroyPending(first) {
		t.Fatal("no consumption may happen while the score is missing")
	}

	f.addScore(t)
	// The next step's events replace the skipped ones.
	f.w.Triggers().Publish([]ecs.TriggerEvent{{A: second, B: f.player}})
	f.sys.FixedUpdate(f.w, 0.02)

	if got := f.scoreValue(t); got != 1 {
		t.Fatalf("expected score 1, got %d", got)
	}
	if f.w.Commands().DestroyPending(first) || !f.w.Commands().DestroyPending(second) {
		t.Fatal("only the retried step's collectible should be consumed")
	}
}

func TestResolveTriggersPowerUp(t *testing.T) {
	f := newResolverFixture(t, true)
	cam, err := SpawnDefaultCamera(f.w, f.player)
	if err != nil {
		t.Fatal(err)
	}
	magnet := f.collectible(component.CollectibleMagnet)

	f.sys.ResolveTriggers(f.w, []ecs.TriggerEvent{{A: magnet, B: f.player}})

	p, _ := ecs.Get(f.w, f.player, component.PlayerComponent.Kind())
	if p.PowerUp.Active() {
		t.Fatal("power-up must be applied at playback, not during the scan")
	}

	f.w.Commands().Playback(f.w)

	if p.PowerUp.Kind != component.PowerUpMagnet || p.PowerUp.Remaining != 5 {
		t.Fatalf("expected magnet for 5s, got %+v", p.PowerUp)
	}
	if !ecs.Has(f.w, cam, component.CameraShakeRequestComponent.Kind()) {
		t.Fatal("expected a camera shake request")
	}
	if got := f.scoreValue(t); got != 1 {
		t.Fatalf("power-ups score like coins, got %d", got)
	}
}

func TestResolveTriggersPublishesEvents(t *testing.T) {
	f := newResolverFixture(t, true)
	c1 := f.collectible(component.CollectibleCoin)
	c2 := f.collectible(component.CollectibleInvincibility)

	f.sys.ResolveTriggers(f.w, []ecs.TriggerEvent{{A: f.player, B: c1}, {A: f.player, B: c2}})

	evts := f.w.Events().Drain()
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
	for _, ev := range evts {
		data, ok := ev.Data.(ecs.CollectedEvent)
		if ev.Type != ecs.EventCollected || !ok {
			t.Fatalf("unexpected event %+v", ev)
		}
		if data.Score != 2 || data.Player != f.player {
			t.Fatalf("events should carry the committed score, got %+v", data)
		}
	}
}

type fixedTags struct {
	players, items map[ecs.Entity]bool
}

func (f fixedTags) IsPlayer(e ecs.Entity) bool      { return f.players[e] }
func (f fixedTags) IsCollectible(e ecs.Entity) bool { return f.items[e] }

func TestResolveTriggersCustomTags(t *testing.T) {
	f := newResolverFixture(t, true)
	runner := ecs.CreateEntity(f.w)
	gem := ecs.CreateEntity(f.w)
	_ = ecs.Add(f.w, gem, component.TransformComponent.Kind(), &component.Transform{Position: mgl64.Vec3{}})

	sys := NewCollectibleSystem(fixedTags{
		players: map[ecs.Entity]bool{runner: true},
		items:   map[ecs.Entity]bool{gem: true},
	}, quietLogger())

	if n := sys.ResolveTriggers(f.w, []ecs.TriggerEvent{{A: gem, B: runner}}); n != 1 {
		t.Fatalf("expected lookup-driven classification, got %d", n)
	}
}

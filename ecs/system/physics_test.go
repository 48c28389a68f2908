package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

func addVolumeEntity(t *testing.T, w *ecs.World, pos mgl64.Vec3, vol component.TriggerVolume, tags ...func(ecs.Entity)) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos, Rotation: mgl64.QuatIdent()}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.TriggerVolumeComponent.Kind(), &vol); err != nil {
		t.Fatal(err)
	}
	for _, tag := range tags {
		tag(e)
	}
	return e
}

func playerVolume() component.TriggerVolume {
	return component.TriggerVolume{Radius: 0.5, Bottom: 0, Top: 2}
}

func coinVolume() component.TriggerVolume {
	return component.TriggerVolume{Radius: 0.5, Bottom: -0.5, Top: 0.5, Sensor: true}
}

func TestPhysicsPublishesOverlaps(t *testing.T) {
	tests := []struct {
		name      string
		playerPos mgl64.Vec3
		coinPos   mgl64.Vec3
		want      int
	}{
		{"overlap", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0.4}, 1},
		{"other_lane", mgl64.Vec3{2.5, 0, 0}, mgl64.Vec3{0, 1, 0}, 0},
		{"jumped_over", mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 1, 0}, 0},
		{"ahead", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 5}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			player := addVolumeEntity(t, w, tc.playerPos, playerVolume(), func(e ecs.Entity) {
				_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
			})
			coin := addVolumeEntity(t, w, tc.coinPos, coinVolume(), func(e ecs.Entity) {
				_ = ecs.Add(w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
			})

			ps := NewPhysicsSystem()
			ps.FixedUpdate(w, 0.02)

			got := w.Triggers().Take()
			if len(got) != tc.want {
				t.Fatalf("expected %d overlaps, got %v", tc.want, got)
			}
			if tc.want == 1 {
				ev := got[0]
				if !(ev.A == player && ev.B == coin) && !(ev.A == coin && ev.B == player) {
					t.Fatalf("unexpected pair %+v", ev)
				}
			}
		})
	}
}

func TestPhysicsFollowsPlayerTransform(t *testing.T) {
	w := ecs.NewWorld()
	player := addVolumeEntity(t, w, mgl64.Vec3{}, playerVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	})
	addVolumeEntity(t, w, mgl64.Vec3{0, 1, 10}, coinVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
	})

	ps := NewPhysicsSystem()
	ps.FixedUpdate(w, 0.02)
	if got := w.Triggers().Take(); len(got) != 0 {
		t.Fatalf("expected no overlap at start, got %v", got)
	}

	tr, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	tr.Position = mgl64.Vec3{0, 0, 10}
	ps.FixedUpdate(w, 0.02)
	if got := w.Triggers().Take(); len(got) != 1 {
		t.Fatalf("expected overlap after moving, got %v", got)
	}
}

func TestPhysicsDropsPendingDestroys(t *testing.T) {
	w := ecs.NewWorld()
	addVolumeEntity(t, w, mgl64.Vec3{}, playerVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	})
	coin := addVolumeEntity(t, w, mgl64.Vec3{0, 1, 0}, coinVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
	})

	ps := NewPhysicsSystem()
	ps.FixedUpdate(w, 0.02)
	if ps.BodyCount() != 2 {
		t.Fatalf("expected 2 bodies, got %d", ps.BodyCount())
	}

	w.Commands().Destroy(coin)
	ps.FixedUpdate(w, 0.02)
	if got := w.Triggers().Take(); len(got) != 0 {
		t.Fatalf("queued destroys must not report overlaps, got %v", got)
	}
	if ps.BodyCount() != 1 {
		t.Fatalf("expected coin body removed, got %d", ps.BodyCount())
	}
}

func TestPhysicsCollisionLayerMask(t *testing.T) {
	w := ecs.NewWorld()
	addVolumeEntity(t, w, mgl64.Vec3{}, playerVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	})
	addVolumeEntity(t, w, mgl64.Vec3{0, 1, 0}, coinVolume(), func(e ecs.Entity) {
		_ = ecs.Add(w, e, component.CollectibleTagComponent.Kind(), &component.CollectibleTag{})
		_ = ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{
			Category: component.LayerCollectible,
			Mask:     component.LayerGround,
		})
	})

	NewPhysicsSystem().FixedUpdate(w, 0.02)
	if got := w.Triggers().Take(); len(got) != 0 {
		t.Fatalf("masked out collectible should not overlap, got %v", got)
	}
}

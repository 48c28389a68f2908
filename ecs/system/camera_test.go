package system

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/common"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type cameraFixture struct {
	w      *ecs.World
	player ecs.Entity
	camera ecs.Entity
	sched  *ecs.Scheduler
}

func newCameraFixture(t *testing.T, playerPos mgl64.Vec3, smoothing *component.CameraSmoothing) *cameraFixture {
	t.Helper()
	w := ecs.NewWorld()

	player := ecs.CreateEntity(w)
	if err := ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, player, component.TransformComponent.Kind(), &component.Transform{Position: playerPos, Rotation: mgl64.QuatIdent()}); err != nil {
		t.Fatal(err)
	}

	cam, err := SpawnDefaultCamera(w, player)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := ecs.Get(w, cam, component.CameraConstraintsComponent.Kind())
	c.Enabled = false
	if smoothing != nil {
		s, _ := ecs.Get(w, cam, component.CameraSmoothingComponent.Kind())
		*s = *smoothing
	}

	return &cameraFixture{
		w:      w,
		player: player,
		camera: cam,
		sched:  ecs.NewScheduler(NewCameraSystem(1, quietLogger())),
	}
}

func (f *cameraFixture) cameraTransform(t *testing.T) *component.Transform {
	t.Helper()
	tr, ok := ecs.Get(f.w, f.camera, component.TransformComponent.Kind())
	if !ok {
		t.Fatal("camera has no transform")
	}
	return tr
}

func TestCameraThirdPersonPose(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{0, 0, 10}, &component.CameraSmoothing{})
	f.sched.Update(f.w, 1.0/60.0)

	tr := f.cameraTransform(t)
	want := mgl64.Vec3{0, 8, -2}
	if !tr.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, tr.Position)
	}

	lookDir := mgl64.Vec3{0, -6.5, 12}.Normalize()
	if got := common.Forward(tr.Rotation); !got.ApproxEqualThreshold(lookDir, 1e-9) {
		t.Fatalf("camera should look at the player's head, forward=%v want %v", got, lookDir)
	}

	follow, _ := ecs.Get(f.w, f.camera, component.CameraFollowComponent.Kind())
	if follow.State != component.CameraTracking {
		t.Fatalf("expected tracking state, got %v", follow.State)
	}
}

func TestCameraThirdPersonRotatesOffset(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{}, &component.CameraSmoothing{})
	ptr, _ := ecs.Get(f.w, f.player, component.TransformComponent.Kind())
	ptr.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})

	f.sched.Update(f.w, 1.0/60.0)

	// A quarter turn about Y maps -Z to -X.
	want := mgl64.Vec3{-12, 8, 0}
	if got := f.cameraTransform(t).Position; !got.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCameraFirstPersonPose(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{2.5, 1, 30}, &component.CameraSmoothing{})
	follow, _ := ecs.Get(f.w, f.camera, component.CameraFollowComponent.Kind())
	follow.ViewMode = component.ViewFirstPerson
	follow.Offset = mgl64.Vec3{0, 0, 0.2}
	playerRot := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 1, 0})
	ptr, _ := ecs.Get(f.w, f.player, component.TransformComponent.Kind())
	ptr.Rotation = playerRot

	f.sched.Update(f.w, 1.0/60.0)

	tr := f.cameraTransform(t)
	if want := (mgl64.Vec3{2.5, 2.8, 30.2}); !tr.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, tr.Position)
	}
	if !tr.Rotation.ApproxEqualThreshold(playerRot, 1e-9) {
		t.Fatalf("expected player rotation, got %v", tr.Rotation)
	}
}

func TestCameraHoldsWhenTargetLost(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{}, &component.CameraSmoothing{})
	f.sched.Update(f.w, 1.0/60.0)
	before := *f.cameraTransform(t)

	ecs.DestroyEntity(f.w, f.player)
	f.sched.Update(f.w, 1.0/60.0)

	pose, _ := ecs.Get(f.w, f.camera, component.CameraTargetPoseComponent.Kind())
	if pose.Valid {
		t.Fatal("pose should be invalid without a target")
	}
	if after := *f.cameraTransform(t); after != before {
		t.Fatalf("camera should hold, moved from %v to %v", before.Position, after.Position)
	}
}

func TestCameraAbortsOnNonFinitePlayer(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{}, &component.CameraSmoothing{})
	f.sched.Update(f.w, 1.0/60.0)
	before := f.cameraTransform(t).Position

	ptr, _ := ecs.Get(f.w, f.player, component.TransformComponent.Kind())
	ptr.Position = mgl64.Vec3{math.Inf(1), 0, 0}
	f.sched.Update(f.w, 1.0/60.0)

	if got := f.cameraTransform(t).Position; got != before {
		t.Fatalf("camera must not move on a non-finite target, got %v", got)
	}
}

func TestCameraSmoothingConvergence(t *testing.T) {
	const (
		rate = 8.0
		dt   = 1.0 / 60.0
		tol  = 0.01
	)
	// The remaining error after n ticks is exp(-rate*dt*n) of the initial one.
	bound := int(math.Ceil(math.Log(1/tol) / (rate * dt)))

	f := newCameraFixture(t, mgl64.Vec3{}, &component.CameraSmoothing{PositionRate: rate, RotationRate: rate, Enabled: true})
	target := mgl64.Vec3{0, 8, -12}
	start := target.Add(mgl64.Vec3{100, 0, 0})
	f.cameraTransform(t).Position = start
	initial := start.Sub(target).Len()

	for i := 0; i < bound-1; i++ {
		f.sched.Update(f.w, dt)
	}
	if err := f.cameraTransform(t).Position.Sub(target).Len(); err <= tol*initial {
		t.Fatalf("converged too early: error %v after %d ticks", err, bound-1)
	}

	f.sched.Update(f.w, dt)
	if err := f.cameraTransform(t).Position.Sub(target).Len(); err > tol*initial {
		t.Fatalf("expected error below %v after %d ticks, got %v", tol*initial, bound, err)
	}
}

func TestCameraSnapOnAcquire(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{0, 0, 50}, &component.CameraSmoothing{PositionRate: 1, RotationRate: 1, Enabled: true, SnapOnAcquire: true})
	f.sched.Update(f.w, 1.0/60.0)

	if got, want := f.cameraTransform(t).Position, (mgl64.Vec3{0, 8, 38}); !got.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected snap to %v, got %v", want, got)
	}

	ptr, _ := ecs.Get(f.w, f.player, component.TransformComponent.Kind())
	ptr.Position = mgl64.Vec3{0, 0, 60}
	f.sched.Update(f.w, 1.0/60.0)
	if got := f.cameraTransform(t).Position.Z(); got >= 48 {
		t.Fatalf("only the first pose should snap, got z=%v", got)
	}
}

func TestCameraConstraints(t *testing.T) {
	box := component.CameraConstraints{
		MinPosition: mgl64.Vec3{-50, 2, -1000},
		MaxPosition: mgl64.Vec3{50, 50, 1000},
		Enabled:     true,
	}

	tests := []struct {
		name   string
		pos    mgl64.Vec3
		player mgl64.Vec3
		c      component.CameraConstraints
		want   mgl64.Vec3
	}{
		{"box_clamp", mgl64.Vec3{1000, 100, 1000}, mgl64.Vec3{1000, 100, 1000}, box, mgl64.Vec3{50, 50, 1000}},
		{"inside_box", mgl64.Vec3{1, 3, 4}, mgl64.Vec3{1, 3, 4}, box, mgl64.Vec3{1, 3, 4}},
		{"distance_ignored_by_default", mgl64.Vec3{0, 10, 100}, mgl64.Vec3{0, 10, 0}, distanceData(box, 5, 30), mgl64.Vec3{0, 10, 100}},
		{"max_distance", mgl64.Vec3{0, 10, 100}, mgl64.Vec3{0, 10, 0}, withDistance(box, 5, 30), mgl64.Vec3{0, 10, 30}},
		{"min_distance", mgl64.Vec3{0, 10, 1}, mgl64.Vec3{0, 10, 0}, withDistance(box, 5, 30), mgl64.Vec3{0, 10, 5}},
		{"distance_then_box", mgl64.Vec3{0, 100, 0}, mgl64.Vec3{0, 0, 0}, withDistance(box, 5, 60), mgl64.Vec3{0, 50, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := constrain(tc.pos, tc.player, tc.c)
			if !got.ApproxEqualThreshold(tc.want, 1e-9) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func withDistance(c component.CameraConstraints, lo, hi float64) component.CameraConstraints {
	c = distanceData(c, lo, hi)
	c.ClampDistance = true
	return c
}

func distanceData(c component.CameraConstraints, lo, hi float64) component.CameraConstraints {
	c.MinDistance = lo
	c.MaxDistance = hi
	return c
}

func TestCameraDefaultConstraintsBoxOnly(t *testing.T) {
	w := ecs.NewWorld()
	target := ecs.CreateEntity(w)
	cam, err := SpawnDefaultCamera(w, target)
	if err != nil {
		t.Fatalf("spawn camera: %v", err)
	}
	c, ok := ecs.Get(w, cam, component.CameraConstraintsComponent.Kind())
	if !ok {
		t.Fatal("default camera has no constraints")
	}

	got := constrain(mgl64.Vec3{1000, 100, 1000}, mgl64.Vec3{}, *c)
	if want := (mgl64.Vec3{50, 50, 1000}); !got.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCameraShakeDecays(t *testing.T) {
	s := NewCameraSystem(42, quietLogger())
	shake := &component.CameraShake{Intensity: 2, Duration: 0.5, Active: true}
	dt := 0.1

	for i := 1; i <= 4; i++ {
		off := s.shakeOffset(shake, dt)
		limit := 2 * (1 - float64(i)*dt/0.5)
		for axis := 0; axis < 3; axis++ {
			if math.Abs(off[axis]) > limit+1e-12 {
				t.Fatalf("tick %d: axis %d offset %v exceeds %v", i, axis, off[axis], limit)
			}
		}
		if !shake.Active {
			t.Fatalf("shake ended early at tick %d", i)
		}
	}

	if off := s.shakeOffset(shake, dt); off != (mgl64.Vec3{}) {
		t.Fatalf("expected no offset once the duration elapsed, got %v", off)
	}
	if shake.Active || shake.Intensity != 0 || shake.Elapsed != 0 {
		t.Fatalf("expected shake reset, got %+v", *shake)
	}
}

func TestCameraShakeRequestConsumed(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{}, &component.CameraSmoothing{})
	if err := ecs.Add(f.w, f.camera, component.CameraShakeRequestComponent.Kind(), &component.CameraShakeRequest{Duration: 0.3, Intensity: 0.5}); err != nil {
		t.Fatal(err)
	}

	f.sched.Update(f.w, 1.0/60.0)

	if ecs.Has(f.w, f.camera, component.CameraShakeRequestComponent.Kind()) {
		t.Fatal("shake request should be removed at playback")
	}
	shake, _ := ecs.Get(f.w, f.camera, component.CameraShakeComponent.Kind())
	if !shake.Active || shake.Duration != 0.3 {
		t.Fatalf("expected an active shake, got %+v", *shake)
	}
	if got := f.cameraTransform(t).Position.Sub(mgl64.Vec3{0, 8, -12}).Len(); got == 0 || got > 0.5*math.Sqrt(3) {
		t.Fatalf("expected a bounded shake displacement, got %v", got)
	}
}

func TestCameraRig(t *testing.T) {
	f := newCameraFixture(t, mgl64.Vec3{1.25, 0, 100}, &component.CameraSmoothing{})
	rig := &component.CameraRig{
		FollowDistance:   8,
		Height:           4,
		LookAhead:        2.5,
		LateralLookAhead: 1.25,
		MaxTilt:          8,
		TiltRate:         6,
		ForwardSign:      1,
		MinFOV:           60,
		MaxFOV:           75,
		SpeedForMaxFOV:   20,
		FOVRate:          4,
	}
	if err := ecs.Add(f.w, f.camera, component.CameraRigComponent.Kind(), rig); err != nil {
		t.Fatal(err)
	}
	player := &component.Player{
		Config: runnerConfig(),
		Lane:   component.LaneState{Current: 0, Target: 1, Progress: 0.5},
	}
	if err := ecs.Add(f.w, f.player, component.PlayerComponent.Kind(), player); err != nil {
		t.Fatal(err)
	}

	f.sched.Update(f.w, 0.1)

	tr := f.cameraTransform(t)
	// lane x 1.25 plus lead 1.25*(1-0.25)
	want := mgl64.Vec3{1.25 + 0.9375, 4, 92}
	if !tr.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, tr.Position)
	}
	if rig.Tilt >= 0 {
		t.Fatalf("changing lanes to the right should roll negative, got %v", rig.Tilt)
	}
	wantTilt := -8 * 0.5 * 0.6
	if math.Abs(rig.Tilt-wantTilt) > 1e-9 {
		t.Fatalf("expected tilt %v, got %v", wantTilt, rig.Tilt)
	}

	lens, _ := ecs.Get(f.w, f.camera, component.CameraLensComponent.Kind())
	if lens.FOV <= 60 || lens.FOV >= 67.5 {
		t.Fatalf("fov should ease from 60 toward 67.5, got %v", lens.FOV)
	}
}

func TestCameraInitSystem(t *testing.T) {
	w := ecs.NewWorld()
	sched := ecs.NewScheduler(NewCameraInitSystem(nil, quietLogger()))

	sched.Update(w, 1.0/60.0)
	if _, ok := ecs.First(w, component.CameraTagComponent.Kind()); ok {
		t.Fatal("no camera should be created before the player exists")
	}

	player := ecs.CreateEntity(w)
	_ = ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	sched.Update(w, 1.0/60.0)
	sched.Update(w, 1.0/60.0)

	if n := ecs.Count(w, component.CameraFollowComponent.Kind()); n != 1 {
		t.Fatalf("expected exactly one camera, got %d", n)
	}
	cam, _ := ecs.First(w, component.CameraTagComponent.Kind())
	follow, _ := ecs.Get(w, cam, component.CameraFollowComponent.Kind())
	if ecs.Entity(follow.Target) != player || follow.Offset != DefaultCameraOffset {
		t.Fatalf("unexpected camera binding %+v", *follow)
	}
	c, _ := ecs.Get(w, cam, component.CameraConstraintsComponent.Kind())
	if c.MinDistance != 5 || c.MaxDistance != 30 || c.MaxPosition != (mgl64.Vec3{50, 50, 1000}) {
		t.Fatalf("unexpected constraints %+v", *c)
	}
}

func TestCameraInitBindsUnboundCamera(t *testing.T) {
	w := ecs.NewWorld()
	player := ecs.CreateEntity(w)
	_ = ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	cam, err := SpawnDefaultCamera(w, ecs.NoEntity)
	if err != nil {
		t.Fatal(err)
	}

	ecs.NewScheduler(NewCameraInitSystem(nil, quietLogger())).Update(w, 1.0/60.0)

	follow, _ := ecs.Get(w, cam, component.CameraFollowComponent.Kind())
	if ecs.Entity(follow.Target) != player {
		t.Fatalf("expected camera bound to player, got %v", follow.Target)
	}
}

package system

import (
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/common"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

var (
	worldUp = mgl64.Vec3{0, 1, 0}

	// thirdPersonLookHeight is where the third person camera aims above the
	// player's origin.
	thirdPersonLookHeight = mgl64.Vec3{0, 1.5, 0}
	firstPersonEye        = mgl64.Vec3{0, 1.8, 0}
)

// poseHandler computes the unsmoothed camera pose for one view mode.
type poseHandler func(player component.Transform, offset mgl64.Vec3) (mgl64.Vec3, mgl64.Quat)

var poseHandlers = map[component.ViewMode]poseHandler{
	component.ViewThirdPerson: thirdPersonPose,
	component.ViewFirstPerson: firstPersonPose,
}

func poseFor(m component.ViewMode) poseHandler {
	if h, ok := poseHandlers[m]; ok {
		return h
	}
	return thirdPersonPose
}

func thirdPersonPose(player component.Transform, offset mgl64.Vec3) (mgl64.Vec3, mgl64.Quat) {
	rot := safeRotation(player.Rotation)
	pos := player.Position.Add(rot.Rotate(offset))
	look := player.Position.Add(thirdPersonLookHeight)
	return pos, common.LookRotation(look.Sub(pos), worldUp)
}

func firstPersonPose(player component.Transform, offset mgl64.Vec3) (mgl64.Vec3, mgl64.Quat) {
	return player.Position.Add(firstPersonEye).Add(offset), safeRotation(player.Rotation)
}

// safeRotation treats a zero quaternion, as left by an unset Transform, as
// the identity.
func safeRotation(q mgl64.Quat) mgl64.Quat {
	if q.Len() < 1e-9 || !common.IsFiniteQuat(q) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// CameraSystem moves every following camera toward its target pose. It reads
// the player transforms committed by the locomotion stage and writes only
// camera-owned components, so it can run beside the fixed-step group.
type CameraSystem struct {
	rng    *rand.Rand
	logger *slog.Logger
}

func NewCameraSystem(seed uint64, logger *slog.Logger) *CameraSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraSystem{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger: logger,
	}
}

func (s *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Time().Delta
	if !common.IsFinite(dt) || dt <= 0 {
		return
	}

	s.consumeShakeRequests(w)

	ecs.ForEach3(w,
		component.CameraFollowComponent.Kind(),
		component.CameraTargetPoseComponent.Kind(),
		component.TransformComponent.Kind(),
		func(e ecs.Entity, follow *component.CameraFollow, pose *component.CameraTargetPose, tr *component.Transform) {
			s.updateCamera(w, e, follow, pose, tr, dt)
		})
}

func (s *CameraSystem) updateCamera(w *ecs.World, e ecs.Entity, follow *component.CameraFollow, pose *component.CameraTargetPose, tr *component.Transform, dt float64) {
	target := ecs.Entity(follow.Target)
	playerTr, ok := ecs.Get(w, target, component.TransformComponent.Kind())
	if !ok || !common.IsFiniteVec3(playerTr.Position) {
		pose.Valid = false
		return
	}

	var (
		pos mgl64.Vec3
		rot mgl64.Quat
	)
	if rig, ok := ecs.Get(w, e, component.CameraRigComponent.Kind()); ok {
		player, _ := ecs.Get(w, target, component.PlayerComponent.Kind())
		lens, _ := ecs.Get(w, e, component.CameraLensComponent.Kind())
		pos, rot = rigPose(*playerTr, player, rig, lens, dt)
	} else {
		pos, rot = poseFor(follow.ViewMode)(*playerTr, follow.Offset)
	}
	if !common.IsFiniteVec3(pos) || !common.IsFiniteQuat(rot) {
		pose.Valid = false
		return
	}
	*pose = component.CameraTargetPose{Position: pos, Rotation: rot, Valid: true}

	acquired := follow.State == component.CameraUninitialized
	if acquired {
		follow.State = component.CameraTracking
		s.logger.Info("camera acquired target", "camera", e, "target", target, "mode", follow.ViewMode)
	}

	nextPos, nextRot := pose.Position, pose.Rotation
	smoothing, _ := ecs.Get(w, e, component.CameraSmoothingComponent.Kind())
	if smoothing != nil && smoothing.Enabled && !(acquired && smoothing.SnapOnAcquire) {
		nextPos = lerpVec3(tr.Position, pose.Position, common.ExpSmoothing(smoothing.PositionRate, dt))
		nextRot = common.Slerp(safeRotation(tr.Rotation), pose.Rotation, common.ExpSmoothing(smoothing.RotationRate, dt))
	}

	if c, ok := ecs.Get(w, e, component.CameraConstraintsComponent.Kind()); ok && c.Enabled {
		nextPos = constrain(nextPos, playerTr.Position, *c)
	}

	if shake, ok := ecs.Get(w, e, component.CameraShakeComponent.Kind()); ok {
		nextPos = nextPos.Add(s.shakeOffset(shake, dt))
	}

	if !common.IsFiniteVec3(nextPos) || !common.IsFiniteQuat(nextRot) {
		return
	}
	tr.Position = nextPos
	tr.Rotation = nextRot.Normalize()
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// constrain clamps the camera into the allowed box. With ClampDistance set
// it first keeps the camera within [MinDistance, MaxDistance] of the player.
func constrain(pos, player mgl64.Vec3, c component.CameraConstraints) mgl64.Vec3 {
	if c.ClampDistance {
		d := pos.Sub(player)
		dist := d.Len()
		switch {
		case c.MaxDistance > 0 && dist > c.MaxDistance:
			pos = player.Add(d.Mul(c.MaxDistance / dist))
		case c.MinDistance > 0 && dist < c.MinDistance && dist > 1e-9:
			pos = player.Add(d.Mul(c.MinDistance / dist))
		}
	}
	return common.ClampVec3(pos, c.MinPosition, c.MaxPosition)
}

// rigPose trails the runner along the track axis, leads lane changes and
// rolls into them. It also eases the lens FOV toward the speed-based target.
func rigPose(playerTr component.Transform, player *component.Player, rig *component.CameraRig, lens *component.CameraLens, dt float64) (mgl64.Vec3, mgl64.Quat) {
	current, target := 0, 0
	progress, laneWidth, speed := 1.0, 2.5, 10.0
	if player != nil {
		current, target = player.Lane.Current, player.Lane.Target
		progress = common.Clamp01(player.Lane.Progress)
		laneWidth, speed = player.Config.LaneWidth, player.Config.MoveSpeed
	}

	laneDelta := float64(common.ClampInt(target-current, -1, 1))
	lateralLead := laneDelta * rig.LateralLookAhead * (1 - progress*progress)

	sign := rig.ForwardSign
	if sign == 0 {
		sign = 1
	}

	p := playerTr.Position
	look := p.Add(mgl64.Vec3{0, 1.5, sign * rig.LookAhead})
	laneX := common.Lerp(float64(current)*laneWidth, float64(target)*laneWidth, progress)
	desired := mgl64.Vec3{laneX + lateralLead, p.Y() + rig.Height, p.Z() - sign*rig.FollowDistance}

	rot := common.LookRotation(look.Sub(desired), worldUp)

	targetRoll := -laneDelta * rig.MaxTilt * (1 - progress)
	rig.Tilt = common.Lerp(rig.Tilt, targetRoll, common.Clamp01(rig.TiltRate*dt))
	rot = rot.Mul(mgl64.QuatRotate(mgl64.DegToRad(rig.Tilt), mgl64.Vec3{0, 0, 1}))

	if lens != nil && rig.MaxFOV > 0 {
		fov01 := common.Clamp01(speed / max(0.001, rig.SpeedForMaxFOV))
		targetFOV := common.Lerp(rig.MinFOV, rig.MaxFOV, fov01)
		if lens.FOV <= 0 {
			lens.FOV = rig.MinFOV
		}
		lens.FOV = common.Lerp(lens.FOV, targetFOV, common.ExpSmoothing(rig.FOVRate, dt))
	}

	return desired, rot
}

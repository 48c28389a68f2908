package component

import "github.com/go-gl/mathgl/mgl64"

type ViewMode int

const (
	ViewThirdPerson ViewMode = iota
	ViewFirstPerson
	ViewTopDown
	ViewSide
	ViewDynamic
)

var viewModeNames = map[ViewMode]string{
	ViewThirdPerson: "third_person",
	ViewFirstPerson: "first_person",
	ViewTopDown:     "top_down",
	ViewSide:        "side",
	ViewDynamic:     "dynamic",
}

func (m ViewMode) String() string {
	if name, ok := viewModeNames[m]; ok {
		return name
	}
	return viewModeNames[ViewThirdPerson]
}

// ParseViewMode maps a view mode name to its value. Unknown names fall back
// to third person.
func ParseViewMode(s string) ViewMode {
	for m, name := range viewModeNames {
		if name == s {
			return m
		}
	}
	return ViewThirdPerson
}

type CameraState int

const (
	CameraUninitialized CameraState = iota
	CameraTracking
)

// CameraFollow binds a camera to its target. Target is a weak handle; it may
// stop resolving at any time.
type CameraFollow struct {
	Target   uint64 // ecs.Entity
	Offset   mgl64.Vec3
	ViewMode ViewMode
	State    CameraState
}

var CameraFollowComponent = NewComponent[CameraFollow]()

// CameraSmoothing holds exponential approach rates in 1/s.
type CameraSmoothing struct {
	PositionRate  float64
	RotationRate  float64
	Enabled       bool
	SnapOnAcquire bool
}

var CameraSmoothingComponent = NewComponent[CameraSmoothing]()

type CameraConstraints struct {
	MinPosition   mgl64.Vec3
	MaxPosition   mgl64.Vec3
	// MinDistance and MaxDistance only apply when ClampDistance is set.
	MinDistance   float64
	MaxDistance   float64
	ClampDistance bool
	Enabled       bool
}

var CameraConstraintsComponent = NewComponent[CameraConstraints]()

type CameraShake struct {
	Intensity float64
	Duration  float64
	Elapsed   float64
	Active    bool
}

var CameraShakeComponent = NewComponent[CameraShake]()

// CameraTargetPose is the unsmoothed pose computed for the current tick.
type CameraTargetPose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Valid    bool
}

var CameraTargetPoseComponent = NewComponent[CameraTargetPose]()

// CameraRig switches a camera to the chase rig used on the track: it trails
// the runner along Z, leads lane changes and rolls into them.
type CameraRig struct {
	FollowDistance   float64
	Height           float64
	LookAhead        float64
	LateralLookAhead float64
	MaxTilt          float64 // degrees
	TiltRate         float64
	ForwardSign      float64 // +1 when the runner moves toward +Z

	MinFOV         float64
	MaxFOV         float64
	SpeedForMaxFOV float64
	FOVRate        float64

	Tilt float64
}

var CameraRigComponent = NewComponent[CameraRig]()

// CameraLens is read by the renderer.
type CameraLens struct {
	FOV  float64
	Zoom float64
}

var CameraLensComponent = NewComponent[CameraLens]()

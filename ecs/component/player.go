package component

// VerticalPolicy selects how a player archetype moves vertically.
type VerticalPolicy int

const (
	// VerticalVelocity integrates a jump velocity under gravity.
	VerticalVelocity VerticalPolicy = iota
	// VerticalParabolic follows a fixed-duration arc and a timed slide.
	VerticalParabolic
)

func (p VerticalPolicy) String() string {
	switch p {
	case VerticalParabolic:
		return "parabolic"
	default:
		return "velocity"
	}
}

const (
	MinLane = -1
	MaxLane = 1
)

// PlayerConfig is fixed when the player is spawned.
type PlayerConfig struct {
	MoveSpeed       float64
	LaneWidth       float64
	LaneChangeSpeed float64
	Policy          VerticalPolicy

	// Velocity policy.
	JumpForce float64
	Gravity   float64

	// Parabolic policy.
	JumpHeight    float64
	JumpDuration  float64
	SlideDepth    float64
	SlideDuration float64
}

// LaneState tracks the horizontal transition between lanes. Progress is 1
// whenever Current equals Target.
type LaneState struct {
	Current  int
	Target   int
	Progress float64
}

// Settled reports whether no lane transition is in flight.
func (l LaneState) Settled() bool {
	return l.Current == l.Target
}

// VerticalState carries the state of both vertical policies. Only the
// fields of the configured policy are used.
type VerticalState struct {
	Position float64
	Velocity float64

	Jumping    bool
	JumpTimer  float64
	Sliding    bool
	SlideTimer float64
}

type PowerUpKind int

const (
	PowerUpNone PowerUpKind = iota
	PowerUpMagnet
	PowerUpInvincibility
)

func (k PowerUpKind) String() string {
	switch k {
	case PowerUpMagnet:
		return "magnet"
	case PowerUpInvincibility:
		return "invincibility"
	default:
		return "none"
	}
}

type PowerUp struct {
	Kind      PowerUpKind
	Remaining float64
}

// Active reports whether a power-up timer is still running.
func (p PowerUp) Active() bool {
	return p.Kind != PowerUpNone && p.Remaining > 0
}

type Player struct {
	Config   PlayerConfig
	Lane     LaneState
	Vertical VerticalState

	DistanceTravelled float64
	PowerUp           PowerUp
}

var PlayerComponent = NewComponent[Player]()

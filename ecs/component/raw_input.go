package component

type TouchPhase int

const (
	TouchBegan TouchPhase = iota
	TouchMoved
	TouchStationary
	TouchEnded
	TouchCanceled
)

// TouchRecord is a single touch sample in screen pixels with Y growing
// downward.
type TouchRecord struct {
	ID           int
	X, Y         float64
	ScreenWidth  float64
	ScreenHeight float64
	Phase        TouchPhase
}

var TouchRecordComponent = NewComponent[TouchRecord]()

// SwipeRecord is a completed swipe gesture. DX and DY are in screen pixels
// with Y growing upward.
type SwipeRecord struct {
	DX, DY   float64
	Duration float64
}

var SwipeRecordComponent = NewComponent[SwipeRecord]()

// PinchRecord is produced by two-finger gestures. The runner ignores it.
type PinchRecord struct {
	Delta float64
}

var PinchRecordComponent = NewComponent[PinchRecord]()

type KeyAction int

const (
	KeyNone KeyAction = iota
	KeyLeft
	KeyRight
	KeyJump
	KeyDive
)

// KeyRecord is one key press already mapped to a runner action.
type KeyRecord struct {
	Action KeyAction
}

var KeyRecordComponent = NewComponent[KeyRecord]()

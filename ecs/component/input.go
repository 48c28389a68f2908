package component

// InputIntent is the canonical per-tick input. It is overwritten every tick,
// never accumulated.
type InputIntent struct {
	LaneChange int
	Jump       bool
	Dive       bool
}

// Empty reports whether the intent carries no request.
func (i InputIntent) Empty() bool {
	return i.LaneChange == 0 && !i.Jump && !i.Dive
}

var InputIntentComponent = NewComponent[InputIntent]()

package system

import (
	"math"

	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

const (
	// DefaultMinSwipe is the shortest swipe, in pixels, that counts as a gesture.
	DefaultMinSwipe = 50.0

	tapLowerThird = 0.33
	tapUpperThird = 0.66
)

// RawInputSource turns device state into raw record entities. Poll runs at
// the start of the input stage, before the records are normalized.
type RawInputSource interface {
	Poll(w *ecs.World)
}

// InputSystem folds the tick's raw records into one InputIntent per player
// and queues every record for destruction.
type InputSystem struct {
	source   RawInputSource
	minSwipe float64
}

func NewInputSystem(source RawInputSource) *InputSystem {
	return &InputSystem{source: source, minSwipe: DefaultMinSwipe}
}

// WithMinSwipe overrides the swipe threshold in pixels.
func (s *InputSystem) WithMinSwipe(px float64) *InputSystem {
	if px > 0 {
		s.minSwipe = px
	}
	return s
}

func (s *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if s.source != nil {
		s.source.Poll(w)
	}

	intent := s.Normalize(w)

	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.InputIntentComponent.Kind(), func(_ ecs.Entity, _ *component.PlayerTag, in *component.InputIntent) {
		*in = intent
	})
}

// intentFlags collects every direction seen this tick before precedence is
// applied.
type intentFlags struct {
	left, right, jump, dive bool
}

func (f *intentFlags) merge(o intentFlags) {
	f.left = f.left || o.left
	f.right = f.right || o.right
	f.jump = f.jump || o.jump
	f.dive = f.dive || o.dive
}

func (f intentFlags) intent() component.InputIntent {
	out := component.InputIntent{Jump: f.jump, Dive: f.dive}
	switch {
	case f.left:
		out.LaneChange = -1
	case f.right:
		out.LaneChange = 1
	}
	return out
}

// Normalize consumes the raw records present in w and returns the tick's
// intent. Records are destroyed at command buffer playback.
func (s *InputSystem) Normalize(w *ecs.World) component.InputIntent {
	var flags intentFlags
	cb := w.Commands()

	ecs.ForEach(w, component.TouchRecordComponent.Kind(), func(e ecs.Entity, t *component.TouchRecord) {
		cb.Destroy(e)
		flags.merge(classifyTap(*t))
	})

	ecs.ForEach(w, component.SwipeRecordComponent.Kind(), func(e ecs.Entity, sw *component.SwipeRecord) {
		cb.Destroy(e)
		flags.merge(classifySwipe(*sw, s.minSwipe))
	})

	ecs.ForEach(w, component.PinchRecordComponent.Kind(), func(e ecs.Entity, _ *component.PinchRecord) {
		cb.Destroy(e)
	})

	ecs.ForEach(w, component.KeyRecordComponent.Kind(), func(e ecs.Entity, k *component.KeyRecord) {
		cb.Destroy(e)
		flags.merge(classifyKey(k.Action))
	})

	ecs.ForEach(w, component.RawInputTagComponent.Kind(), func(e ecs.Entity, _ *component.RawInputTag) {
		cb.Destroy(e)
	})

	return flags.intent()
}

// classifyTap maps a touch that began this tick to screen regions. The
// horizontal and vertical thirds are checked independently.
func classifyTap(t component.TouchRecord) intentFlags {
	var f intentFlags
	if t.Phase != component.TouchBegan || t.ScreenWidth <= 0 || t.ScreenHeight <= 0 {
		return f
	}
	if math.IsNaN(t.X) || math.IsNaN(t.Y) {
		return f
	}

	switch {
	case t.X < t.ScreenWidth*tapLowerThird:
		f.left = true
	case t.X > t.ScreenWidth*tapUpperThird:
		f.right = true
	}

	// Screen Y grows downward, so the top third is the small-Y band.
	switch {
	case t.Y < t.ScreenHeight*tapLowerThird:
		f.jump = true
	case t.Y > t.ScreenHeight*tapUpperThird:
		f.dive = true
	}
	return f
}

// classifySwipe picks the dominant axis of a swipe at least minSwipe long.
func classifySwipe(sw component.SwipeRecord, minSwipe float64) intentFlags {
	var f intentFlags
	mag := math.Hypot(sw.DX, sw.DY)
	if math.IsNaN(mag) || mag < minSwipe {
		return f
	}

	if math.Abs(sw.DX) > math.Abs(sw.DY) {
		if sw.DX < 0 {
			f.left = true
		} else {
			f.right = true
		}
		return f
	}

	if sw.DY > 0 {
		f.jump = true
	} else {
		f.dive = true
	}
	return f
}

func classifyKey(a component.KeyAction) intentFlags {
	var f intentFlags
	switch a {
	case component.KeyLeft:
		f.left = true
	case component.KeyRight:
		f.right = true
	case component.KeyJump:
		f.jump = true
	case component.KeyDive:
		f.dive = true
	}
	return f
}

// SpawnRawInput creates a raw record entity. Sources call it from Poll.
func SpawnRawInput[T any](w *ecs.World, kind component.ComponentKind[T], record T) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, kind, &record)
	_ = ecs.Add(w, e, component.RawInputTagComponent.Kind(), &component.RawInputTag{})
	return e
}

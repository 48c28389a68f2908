package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/ecs/system"
)

// mouseTouchID stands in for the mouse so desktop builds can exercise the
// touch path.
const mouseTouchID ebiten.TouchID = -1

type touchStart struct {
	x, y  float64
	ticks int
}

// EbitenInput polls ebiten's keyboard, touch and mouse state and emits raw
// input records.
type EbitenInput struct {
	screen func() (int, int)

	starts    map[ebiten.TouchID]touchStart
	pinchDist float64
	ticks     int

	touchIDs []ebiten.TouchID
	released []ebiten.TouchID
}

// NewEbitenInput returns a poller. screen reports the logical screen size used
// to classify taps.
func NewEbitenInput(screen func() (int, int)) *EbitenInput {
	return &EbitenInput{
		screen: screen,
		starts: make(map[ebiten.TouchID]touchStart),
	}
}

var keyBindings = []struct {
	keys   []ebiten.Key
	action component.KeyAction
}{
	{[]ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, component.KeyLeft},
	{[]ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, component.KeyRight},
	{[]ebiten.Key{ebiten.KeyK, ebiten.KeyW, ebiten.KeyArrowUp, ebiten.KeySpace}, component.KeyJump},
	{[]ebiten.Key{ebiten.KeyJ, ebiten.KeyS, ebiten.KeyArrowDown}, component.KeyDive},
}

func (in *EbitenInput) Poll(w *ecs.World) {
	if w == nil {
		return
	}
	in.ticks++

	for _, b := range keyBindings {
		for _, k := range b.keys {
			if inpututil.IsKeyJustPressed(k) {
				system.SpawnRawInput(w, component.KeyRecordComponent.Kind(), component.KeyRecord{Action: b.action})
				break
			}
		}
	}

	sw, sh := 0, 0
	if in.screen != nil {
		sw, sh = in.screen()
	}

	in.touchIDs = inpututil.AppendJustPressedTouchIDs(in.touchIDs[:0])
	for _, id := range in.touchIDs {
		x, y := ebiten.TouchPosition(id)
		in.began(w, id, float64(x), float64(y), sw, sh)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		in.began(w, mouseTouchID, float64(x), float64(y), sw, sh)
	}

	in.released = inpututil.AppendJustReleasedTouchIDs(in.released[:0])
	for _, id := range in.released {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		in.ended(w, id, float64(x), float64(y), sw, sh)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		in.ended(w, mouseTouchID, float64(x), float64(y), sw, sh)
	}

	in.pollPinch(w)
}

func (in *EbitenInput) began(w *ecs.World, id ebiten.TouchID, x, y float64, sw, sh int) {
	in.starts[id] = touchStart{x: x, y: y, ticks: in.ticks}
	system.SpawnRawInput(w, component.TouchRecordComponent.Kind(), component.TouchRecord{
		ID:           int(id),
		X:            x,
		Y:            y,
		ScreenWidth:  float64(sw),
		ScreenHeight: float64(sh),
		Phase:        component.TouchBegan,
	})
}

func (in *EbitenInput) ended(w *ecs.World, id ebiten.TouchID, x, y float64, sw, sh int) {
	start, ok := in.starts[id]
	delete(in.starts, id)

	system.SpawnRawInput(w, component.TouchRecordComponent.Kind(), component.TouchRecord{
		ID:           int(id),
		X:            x,
		Y:            y,
		ScreenWidth:  float64(sw),
		ScreenHeight: float64(sh),
		Phase:        component.TouchEnded,
	})
	if !ok {
		return
	}

	// Swipes are reported with Y up.
	system.SpawnRawInput(w, component.SwipeRecordComponent.Kind(), component.SwipeRecord{
		DX:       x - start.x,
		DY:       start.y - y,
		Duration: float64(in.ticks-start.ticks) / float64(ebiten.TPS()),
	})
}

func (in *EbitenInput) pollPinch(w *ecs.World) {
	ids := ebiten.AppendTouchIDs(nil)
	if len(ids) < 2 {
		in.pinchDist = 0
		return
	}
	x0, y0 := ebiten.TouchPosition(ids[0])
	x1, y1 := ebiten.TouchPosition(ids[1])
	dist := math.Hypot(float64(x1-x0), float64(y1-y0))
	if in.pinchDist > 0 && dist != in.pinchDist {
		system.SpawnRawInput(w, component.PinchRecordComponent.Kind(), component.PinchRecord{Delta: dist - in.pinchDist})
	}
	in.pinchDist = dist
}

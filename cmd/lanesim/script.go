package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/ecs/system"
)

var actionNames = map[string]component.KeyAction{
	"left":  component.KeyLeft,
	"right": component.KeyRight,
	"jump":  component.KeyJump,
	"dive":  component.KeyDive,
}

// scriptedInput replays key actions at fixed ticks.
type scriptedInput struct {
	actions map[uint64][]component.KeyAction
	tick    uint64
}

// parseScript reads "seconds:action" pairs separated by commas, e.g.
// "0.5:left,1.25:jump". Times are rounded to the nearest tick.
func parseScript(s string, tps int) (*scriptedInput, error) {
	in := &scriptedInput{actions: make(map[uint64][]component.KeyAction)}
	s = strings.TrimSpace(s)
	if s == "" {
		return in, nil
	}
	if tps <= 0 {
		return nil, fmt.Errorf("tps must be positive, got %d", tps)
	}

	for _, part := range strings.Split(s, ",") {
		at, name, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("input %q: expected seconds:action", part)
		}
		secs, err := strconv.ParseFloat(at, 64)
		if err != nil || secs < 0 || math.IsInf(secs, 0) {
			return nil, fmt.Errorf("input %q: bad time", part)
		}
		action, ok := actionNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("input %q: unknown action %q", part, name)
		}
		tick := uint64(math.Round(secs*float64(tps))) + 1
		in.actions[tick] = append(in.actions[tick], action)
	}
	return in, nil
}

func (in *scriptedInput) Poll(w *ecs.World) {
	in.tick++
	for _, action := range in.actions[in.tick] {
		system.SpawnRawInput(w, component.KeyRecordComponent.Kind(), component.KeyRecord{Action: action})
	}
}

package system

import "github.com/milk9111/lanerunner/ecs/component"

// verticalHandler advances one vertical policy and returns the Y offset to
// apply to the player this tick.
type verticalHandler func(v *component.VerticalState, cfg component.PlayerConfig, in component.InputIntent, dt float64) float64

var verticalHandlers = map[component.VerticalPolicy]verticalHandler{
	component.VerticalVelocity:  stepVelocity,
	component.VerticalParabolic: stepParabolic,
}

func verticalFor(p component.VerticalPolicy) verticalHandler {
	if h, ok := verticalHandlers[p]; ok {
		return h
	}
	return stepVelocity
}

// stepVelocity integrates a jump impulse under gravity. A dive overrides any
// jump issued in the same tick.
func stepVelocity(v *component.VerticalState, cfg component.PlayerConfig, in component.InputIntent, dt float64) float64 {
	if v.Position <= 0 {
		v.Position = 0
		v.Velocity = 0
		if in.Jump {
			v.Velocity = cfg.JumpForce
		}
	} else {
		v.Velocity += cfg.Gravity * dt
	}

	if in.Dive {
		v.Velocity = -cfg.JumpForce
	}

	v.Position += v.Velocity * dt
	if v.Position < 0 {
		v.Position = 0
		v.Velocity = 0
	}
	return v.Position
}

// stepParabolic follows h(t) = height*4t(1-t) over the jump duration. While a
// slide is running it holds the player below the track and takes precedence
// over the arc.
func stepParabolic(v *component.VerticalState, cfg component.PlayerConfig, in component.InputIntent, dt float64) float64 {
	if in.Jump && !v.Jumping {
		v.Jumping = true
		v.JumpTimer = 0
	}

	if v.Jumping {
		v.JumpTimer += dt
		t := 1.0
		if cfg.JumpDuration > 0 {
			t = v.JumpTimer / cfg.JumpDuration
		}
		if t < 1 {
			v.Position = cfg.JumpHeight * 4 * t * (1 - t)
		} else {
			v.Jumping = false
			v.JumpTimer = 0
			v.Position = 0
		}
	}
	if v.Position < 0 {
		v.Position = 0
	}
	offset := v.Position

	if in.Dive && !v.Sliding {
		v.Sliding = true
		v.SlideTimer = 0
	}

	if v.Sliding {
		v.SlideTimer += dt
		if v.SlideTimer < cfg.SlideDuration {
			offset = -cfg.SlideDepth
		} else {
			v.Sliding = false
			v.SlideTimer = 0
		}
	}
	return offset
}

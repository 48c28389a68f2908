package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
)

// consumeShakeRequests starts a shake on every camera carrying a request.
// The request is removed at playback.
func (s *CameraSystem) consumeShakeRequests(w *ecs.World) {
	cb := w.Commands()
	ecs.ForEach(w, component.CameraShakeRequestComponent.Kind(), func(e ecs.Entity, req *component.CameraShakeRequest) {
		ecs.DeferRemove(cb, e, component.CameraShakeRequestComponent.Kind())
		if req.Duration <= 0 || req.Intensity <= 0 {
			return
		}

		shake, ok := ecs.Get(w, e, component.CameraShakeComponent.Kind())
		if !ok {
			return
		}
		// A stronger request replaces a running shake, a weaker one is dropped.
		if shake.Active && shake.Duration > 0 && shake.Intensity*(1-shake.Elapsed/shake.Duration) > req.Intensity {
			return
		}
		*shake = component.CameraShake{
			Intensity: req.Intensity,
			Duration:  req.Duration,
			Active:    true,
		}
	})
}

// shakeOffset advances a shake by dt and returns this tick's displacement.
// Amplitude decays linearly to zero over the duration.
func (s *CameraSystem) shakeOffset(shake *component.CameraShake, dt float64) mgl64.Vec3 {
	if !shake.Active {
		return mgl64.Vec3{}
	}

	shake.Elapsed += dt
	if shake.Duration <= 0 || shake.Elapsed >= shake.Duration {
		shake.Active = false
		shake.Elapsed = 0
		shake.Intensity = 0
		return mgl64.Vec3{}
	}

	k := shake.Intensity * (1 - shake.Elapsed/shake.Duration)
	return mgl64.Vec3{s.uniform() * k, s.uniform() * k, s.uniform() * k}
}

func (s *CameraSystem) uniform() float64 {
	return s.rng.Float64()*2 - 1
}

package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateSqrLen is the squared length below which a direction is treated
// as zero.
const degenerateSqrLen = 1e-4

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func IsFiniteVec3(v mgl64.Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

func IsFiniteQuat(q mgl64.Quat) bool {
	return IsFinite(q.W) && IsFiniteVec3(q.V)
}

// ExpSmoothing returns the frame-rate independent blend factor for an
// exponential approach at rate (1/s) over dt seconds.
func ExpSmoothing(rate, dt float64) float64 {
	return Clamp01(1 - math.Exp(-rate*dt))
}

// ClampVec3 clamps each component of v into [lo, hi].
func ClampVec3(v, lo, hi mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		Clamp(v[0], lo[0], hi[0]),
		Clamp(v[1], lo[1], hi[1]),
		Clamp(v[2], lo[2], hi[2]),
	}
}

// LookRotation builds a rotation whose local +Z points along forward and
// whose local +Y is as close to up as possible. A degenerate forward, or one
// parallel to up, yields the identity.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Dot(forward) <= degenerateSqrLen {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Dot(r) <= degenerateSqrLen*degenerateSqrLen {
		return mgl64.QuatIdent()
	}
	r = r.Normalize()
	u := f.Cross(r)

	q := mgl64.Mat4ToQuat(mgl64.Mat3FromCols(r, u, f).Mat4())
	if !IsFiniteQuat(q) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// Slerp interpolates along the shortest arc between a and b.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}

// Forward returns the local +Z axis of q in world space.
func Forward(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(mgl64.Vec3{0, 0, 1})
}

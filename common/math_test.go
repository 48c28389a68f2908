package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestExpSmoothing(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		dt   float64
		want float64
	}{
		{"zero_dt", 8, 0, 0},
		{"huge_rate", 1e9, 1, 1},
		{"negative_rate_clamped", -5, 1, 0},
		{"typical", 8, 1.0 / 60.0, 1 - math.Exp(-8.0/60.0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpSmoothing(tc.rate, tc.dt)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLookRotation(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	tests := []struct {
		name    string
		forward mgl64.Vec3
		want    mgl64.Vec3
	}{
		{"plus_z", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1}},
		{"plus_x", mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 0, 0}},
		{"down_and_forward", mgl64.Vec3{0, -1, 1}, mgl64.Vec3{0, -1, 1}.Normalize()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := LookRotation(tc.forward, up)
			got := Forward(q)
			if !got.ApproxEqualThreshold(tc.want, 1e-9) {
				t.Fatalf("expected forward %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLookRotationDegenerate(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	for _, fwd := range []mgl64.Vec3{{0, 0, 0}, {0, 0.001, 0}, {0, 3, 0}} {
		q := LookRotation(fwd, up)
		if !q.ApproxEqual(mgl64.QuatIdent()) {
			t.Fatalf("expected identity for %v, got %v", fwd, q)
		}
	}
}

func TestClampVec3(t *testing.T) {
	got := ClampVec3(mgl64.Vec3{1000, 100, 1000}, mgl64.Vec3{-50, 2, -1000}, mgl64.Vec3{50, 50, 1000})
	if got != (mgl64.Vec3{50, 50, 1000}) {
		t.Fatalf("unexpected clamp result %v", got)
	}
}

func TestIsFiniteVec3(t *testing.T) {
	if IsFiniteVec3(mgl64.Vec3{0, math.NaN(), 0}) {
		t.Fatal("NaN should not be finite")
	}
	if IsFiniteVec3(mgl64.Vec3{math.Inf(-1), 0, 0}) {
		t.Fatal("Inf should not be finite")
	}
	if !IsFiniteVec3(mgl64.Vec3{1, 2, 3}) {
		t.Fatal("expected finite")
	}
}

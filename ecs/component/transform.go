package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is a world pose. +Z is forward along the track, +Y is up and
// lanes are spread along X.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    float64
}

var TransformComponent = NewComponent[Transform]()

package prefabs

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec converts one entry of a prefab's components map into
// its typed spec, validating it when the type has a Validate method.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		raw = map[string]any{}
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	return ParseSpec[T](b)
}

type TransformComponentSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	Yaw   float64 `yaml:"yaw"` // degrees about +Y
	Scale float64 `yaml:"scale"`
}

type PlayerComponentSpec struct {
	Policy          string  `yaml:"policy"`
	MoveSpeed       float64 `yaml:"move_speed"`
	LaneWidth       float64 `yaml:"lane_width"`
	LaneChangeSpeed float64 `yaml:"lane_change_speed"`
	StartLane       int     `yaml:"start_lane"`

	JumpForce float64 `yaml:"jump_force"`
	Gravity   float64 `yaml:"gravity"`

	JumpHeight    float64 `yaml:"jump_height"`
	JumpDuration  float64 `yaml:"jump_duration"`
	SlideDepth    float64 `yaml:"slide_depth"`
	SlideDuration float64 `yaml:"slide_duration"`
}

func (p *PlayerComponentSpec) Validate() error {
	el := errors.NewErrorList()

	if p.MoveSpeed < 0 {
		el.Add(fmt.Errorf("move_speed must not be negative"))
	}
	if p.LaneWidth <= 0 {
		el.Add(fmt.Errorf("lane_width must be positive"))
	}
	if p.StartLane < -1 || p.StartLane > 1 {
		el.Add(fmt.Errorf("start_lane must be -1, 0 or 1, got %d", p.StartLane))
	}

	switch p.Policy {
	case "", "velocity":
		if p.JumpForce <= 0 {
			el.Add(fmt.Errorf("velocity policy: jump_force must be positive"))
		}
		if p.Gravity >= 0 {
			el.Add(fmt.Errorf("velocity policy: gravity must be negative"))
		}
	case "parabolic":
		if p.JumpHeight <= 0 {
			el.Add(fmt.Errorf("parabolic policy: jump_height must be positive"))
		}
		if p.JumpDuration <= 0 {
			el.Add(fmt.Errorf("parabolic policy: jump_duration must be positive"))
		}
		if p.SlideDepth < 0 || p.SlideDuration < 0 {
			el.Add(fmt.Errorf("parabolic policy: slide_depth and slide_duration must not be negative"))
		}
	default:
		el.Add(fmt.Errorf("unknown policy %q", p.Policy))
	}

	return el.Err()
}

type CollectibleComponentSpec struct {
	Kind            string  `yaml:"kind"`
	PowerUpDuration float64 `yaml:"power_up_duration"`
}

func (c *CollectibleComponentSpec) Validate() error {
	el := errors.NewErrorList()

	switch c.Kind {
	case "coin":
	case "magnet", "invincibility":
		if c.PowerUpDuration <= 0 {
			el.Add(fmt.Errorf("%s: power_up_duration must be positive", c.Kind))
		}
	default:
		el.Add(fmt.Errorf("unknown collectible kind %q", c.Kind))
	}

	return el.Err()
}

type ScoreComponentSpec struct {
	Value int `yaml:"value"`
}

type TriggerVolumeComponentSpec struct {
	Radius float64 `yaml:"radius"`
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`
	Sensor bool    `yaml:"sensor"`
}

func (t *TriggerVolumeComponentSpec) Validate() error {
	el := errors.NewErrorList()

	if t.Radius <= 0 {
		el.Add(fmt.Errorf("radius must be positive"))
	}
	if t.Top < t.Bottom {
		el.Add(fmt.Errorf("top %v is below bottom %v", t.Top, t.Bottom))
	}

	return el.Err()
}

type CollisionLayerComponentSpec struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
}

type CameraFollowComponentSpec struct {
	Offset   Vec3Spec `yaml:"offset"`
	ViewMode string   `yaml:"view_mode"`
}

// Validate defaults an unknown view_mode to third person instead of failing.
func (c *CameraFollowComponentSpec) Validate() error {
	switch c.ViewMode {
	case "third_person", "first_person", "top_down", "side", "dynamic":
	default:
		c.ViewMode = "third_person"
	}
	return nil
}

type CameraSmoothingComponentSpec struct {
	PositionRate  float64 `yaml:"position_rate"`
	RotationRate  float64 `yaml:"rotation_rate"`
	Enabled       bool    `yaml:"enabled"`
	SnapOnAcquire bool    `yaml:"snap_on_acquire"`
}

func (c *CameraSmoothingComponentSpec) Validate() error {
	if c.PositionRate < 0 || c.RotationRate < 0 {
		return fmt.Errorf("smoothing rates must not be negative")
	}
	return nil
}

type CameraConstraintsComponentSpec struct {
	MinPosition   Vec3Spec `yaml:"min_position"`
	MaxPosition   Vec3Spec `yaml:"max_position"`
	MinDistance   float64  `yaml:"min_distance"`
	MaxDistance   float64  `yaml:"max_distance"`
	ClampDistance bool     `yaml:"clamp_distance"`
	Enabled       bool     `yaml:"enabled"`
}

func (c *CameraConstraintsComponentSpec) Validate() error {
	el := errors.NewErrorList()

	if c.MinPosition.X > c.MaxPosition.X || c.MinPosition.Y > c.MaxPosition.Y || c.MinPosition.Z > c.MaxPosition.Z {
		el.Add(fmt.Errorf("min_position must not exceed max_position"))
	}
	if c.MinDistance < 0 || c.MaxDistance < c.MinDistance {
		el.Add(fmt.Errorf("distance range %v..%v is invalid", c.MinDistance, c.MaxDistance))
	}

	return el.Err()
}

type CameraRigComponentSpec struct {
	FollowDistance   float64 `yaml:"follow_distance"`
	Height           float64 `yaml:"height"`
	LookAhead        float64 `yaml:"look_ahead"`
	LateralLookAhead float64 `yaml:"lateral_look_ahead"`
	MaxTilt          float64 `yaml:"max_tilt"`
	TiltRate         float64 `yaml:"tilt_rate"`
	ForwardSign      float64 `yaml:"forward_sign"`
	MinFOV           float64 `yaml:"min_fov"`
	MaxFOV           float64 `yaml:"max_fov"`
	SpeedForMaxFOV   float64 `yaml:"speed_for_max_fov"`
	FOVRate          float64 `yaml:"fov_rate"`
}

func (c *CameraRigComponentSpec) Validate() error {
	if c.MaxFOV < c.MinFOV {
		return fmt.Errorf("max_fov %v is below min_fov %v", c.MaxFOV, c.MinFOV)
	}
	return nil
}

type CameraLensComponentSpec struct {
	FOV  float64 `yaml:"fov"`
	Zoom float64 `yaml:"zoom"`
}

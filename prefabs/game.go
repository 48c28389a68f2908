package prefabs

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// GameSpec is the session configuration read from game.yaml.
type GameSpec struct {
	Title  string     `yaml:"title"`
	Screen ScreenSpec `yaml:"screen"`

	FixedStep   float64 `yaml:"fixed_step"`
	MaxSubsteps int     `yaml:"max_substeps"`
	Workers     int     `yaml:"workers"`
	CameraSeed  uint64  `yaml:"camera_seed"`
	MinSwipe    float64 `yaml:"min_swipe"`

	Player string `yaml:"player"`
	Camera string `yaml:"camera"`
	Score  string `yaml:"score"`

	Track   TrackSpec   `yaml:"track"`
	Palette PaletteSpec `yaml:"palette"`
}

type ScreenSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// PixelsPerUnit scales world units in the top-down debug view.
	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
}

// TrackSpec drives the scripted collectible spawner.
type TrackSpec struct {
	Script        string  `yaml:"script"`
	Seed          uint64  `yaml:"seed"`
	SegmentLength float64 `yaml:"segment_length"`
	Spacing       float64 `yaml:"spacing"`
	LookAhead     float64 `yaml:"look_ahead"`
	DespawnBehind float64 `yaml:"despawn_behind"`
}

type PaletteSpec struct {
	Background  YAMLColor `yaml:"background"`
	Lane        YAMLColor `yaml:"lane"`
	Player      YAMLColor `yaml:"player"`
	Camera      YAMLColor `yaml:"camera"`
	Coin        YAMLColor `yaml:"coin"`
	PowerUp     YAMLColor `yaml:"power_up"`
	Text        YAMLColor `yaml:"text"`
	PhysicsDraw bool      `yaml:"physics_draw"`
}

func (g *GameSpec) Validate() error {
	el := errors.NewErrorList()

	if g.Screen.Width <= 0 || g.Screen.Height <= 0 {
		el.Add(fmt.Errorf("screen: width and height must be positive, got %dx%d", g.Screen.Width, g.Screen.Height))
	}
	if g.Screen.PixelsPerUnit < 0 {
		el.Add(fmt.Errorf("screen: pixels_per_unit must not be negative"))
	}
	if g.FixedStep <= 0 {
		el.Add(fmt.Errorf("fixed_step must be positive, got %v", g.FixedStep))
	}
	if g.MaxSubsteps < 0 {
		el.Add(fmt.Errorf("max_substeps must not be negative, got %d", g.MaxSubsteps))
	}
	if g.Workers < 0 {
		el.Add(fmt.Errorf("workers must not be negative, got %d", g.Workers))
	}
	if g.Player == "" {
		el.Add(fmt.Errorf("player prefab is required"))
	}
	if g.Score == "" {
		el.Add(fmt.Errorf("score prefab is required"))
	}
	if err := g.Track.validate(); err != nil {
		el.Add(fmt.Errorf("track: %w", err))
	}

	return el.Err()
}

func (t *TrackSpec) validate() error {
	el := errors.NewErrorList()

	if t.Script == "" {
		el.Add(fmt.Errorf("script is required"))
	}
	if t.SegmentLength <= 0 {
		el.Add(fmt.Errorf("segment_length must be positive"))
	}
	if t.Spacing <= 0 {
		el.Add(fmt.Errorf("spacing must be positive"))
	}
	if t.LookAhead < 0 || t.DespawnBehind < 0 {
		el.Add(fmt.Errorf("look_ahead and despawn_behind must not be negative"))
	}

	return el.Err()
}

func LoadGameSpec(filename string) (GameSpec, error) {
	return LoadSpec[GameSpec](filename)
}

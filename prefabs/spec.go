package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

type validator interface {
	Validate() error
}

// LoadSpec decodes a prefab file into T and validates it when T knows how.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	spec, err := ParseSpec[T](data)
	if err != nil {
		return zero, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// ParseSpec decodes raw YAML into T and validates it.
func ParseSpec[T any](data []byte) (T, error) {
	var zero T
	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("unmarshal: %w", err)
	}
	if v, ok := any(&spec).(validator); ok {
		if err := v.Validate(); err != nil {
			return zero, fmt.Errorf("validate: %w", err)
		}
	}
	return spec, nil
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG color name such as
// "gold".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(value.Value))]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Or returns the parsed color, or fallback when the field was left empty.
func (c YAMLColor) Or(fallback color.Color) color.Color {
	if c.Color == nil {
		return fallback
	}
	return c.Color
}

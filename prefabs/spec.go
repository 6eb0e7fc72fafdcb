package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"gopkg.in/yaml.v3"
)

// AudioConfigFile is the host configuration prefab.
const AudioConfigFile = "audio.yaml"

var ErrConflictingScale = errors.New("prefabs: spatial_scale and spatial_2d are exclusive")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
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

type DeviceSpec struct {
	Backend         string `yaml:"backend"`
	SampleRate      int    `yaml:"sample_rate"`
	BufferMS        int    `yaml:"buffer_ms"`
	MaxSinks        int    `yaml:"max_sinks"`
	ResampleQuality int    `yaml:"resample_quality"`
}

// Config converts the spec; zero fields fall back to device defaults.
func (s DeviceSpec) Config() (device.Config, error) {
	backend, err := device.ParseBackend(s.Backend)
	if err != nil {
		return device.Config{}, err
	}
	cfg := device.DefaultConfig()
	cfg.Backend = backend
	if s.SampleRate > 0 {
		cfg.SampleRate = s.SampleRate
	}
	if s.BufferMS > 0 {
		cfg.BufferSize = time.Duration(s.BufferMS) * time.Millisecond
	}
	cfg.MaxSinks = s.MaxSinks
	if s.ResampleQuality > 0 {
		cfg.ResampleQuality = s.ResampleQuality
	}
	return cfg, nil
}

// AudioConfigSpec is the host configuration: output device, global volume,
// spatial scale and log level.
type AudioConfigSpec struct {
	GlobalVolume *float64   `yaml:"global_volume"`
	SpatialScale *Vec3Spec  `yaml:"spatial_scale"`
	Spatial2D    *float64   `yaml:"spatial_2d"`
	Device       DeviceSpec `yaml:"device"`
	LogLevel     string     `yaml:"log_level"`
}

func LoadAudioConfig(filename string) (AudioConfigSpec, error) {
	if filename == "" {
		filename = AudioConfigFile
	}
	spec, err := LoadSpec[AudioConfigSpec](filename)
	if err != nil {
		return spec, err
	}
	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

func (s AudioConfigSpec) Validate() error {
	if s.SpatialScale != nil && s.Spatial2D != nil {
		return ErrConflictingScale
	}
	if s.GlobalVolume != nil && *s.GlobalVolume < 0 {
		return fmt.Errorf("global_volume must not be negative, got %v", *s.GlobalVolume)
	}
	if _, err := device.ParseBackend(s.Device.Backend); err != nil {
		return err
	}
	return nil
}

func (s AudioConfigSpec) Volume() audio.GlobalVolume {
	if s.GlobalVolume == nil {
		return audio.DefaultGlobalVolume()
	}
	return audio.NewGlobalVolume(*s.GlobalVolume)
}

func (s AudioConfigSpec) Scale() audio.SpatialScale {
	switch {
	case s.Spatial2D != nil:
		return audio.NewSpatialScale2D(*s.Spatial2D)
	case s.SpatialScale != nil:
		return audio.SpatialScale{Scale: s.SpatialScale.Vec3()}
	default:
		return audio.DefaultSpatialScale()
	}
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
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

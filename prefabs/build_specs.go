package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is an entity prefab: a name and a map of component specs
// keyed by builder name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Z        float64 `yaml:"z"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	ScaleZ   float64 `yaml:"scale_z"`
	Rotation float64 `yaml:"rotation"`
}

// PlaybackComponentSpec is shared by audio and pitch components. Volume
// is relative unless Absolute is set.
type PlaybackComponentSpec struct {
	Mode     string   `yaml:"mode"`
	Volume   *float64 `yaml:"volume"`
	Absolute bool     `yaml:"absolute"`
	Speed    float64  `yaml:"speed"`
	Paused   bool     `yaml:"paused"`
	Spatial  bool     `yaml:"spatial"`
}

type AudioComponentSpec struct {
	File                  string `yaml:"file"`
	PlaybackComponentSpec `yaml:",inline"`
}

type PitchComponentSpec struct {
	Frequency             float64 `yaml:"frequency"`
	DurationMS            int     `yaml:"duration_ms"`
	PlaybackComponentSpec `yaml:",inline"`
}

type SpatialListenerComponentSpec struct {
	// Gap is the distance between the ears. Zero uses the default.
	Gap      float64   `yaml:"gap"`
	LeftEar  *Vec3Spec `yaml:"left_ear"`
	RightEar *Vec3Spec `yaml:"right_ear"`
}

type PhysicsBodyComponentSpec struct {
	Radius     float64 `yaml:"radius"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Static     bool    `yaml:"static"`
	VelocityX  float64 `yaml:"velocity_x"`
	VelocityY  float64 `yaml:"velocity_y"`
}

type CueScriptComponentSpec struct {
	Script string         `yaml:"script"`
	Vars   map[string]any `yaml:"vars"`
}

type AppearanceComponentSpec struct {
	Color  YAMLColor `yaml:"color"`
	Radius float64   `yaml:"radius"`
}

type TTLComponentSpec struct {
	Frames int `yaml:"frames"`
}

type MusicPlayerComponentSpec struct {
	Track  string  `yaml:"track"`
	Volume float64 `yaml:"volume"`
	Loop   *bool   `yaml:"loop"`
}

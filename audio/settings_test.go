package audio

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultPlaybackSettings(t *testing.T) {
	s := DefaultPlaybackSettings()
	if s.Mode != PlaybackOnce || s.Speed != 1 || s.Paused || s.Spatial {
		t.Fatalf("unexpected default %+v", s)
	}
	if s.Volume != DefaultVolume() {
		t.Fatalf("unexpected default volume %+v", s.Volume)
	}
}

func TestPlaybackSettingsBuilders(t *testing.T) {
	s := Despawn.WithPaused().WithSpeed(2).WithSpatial(true).WithVolume(Absolute(0.5))
	if s.Mode != PlaybackDespawn || !s.Paused || s.Speed != 2 || !s.Spatial || s.Volume != Absolute(0.5) {
		t.Fatalf("unexpected settings %+v", s)
	}
	if Despawn.Paused || Despawn.Spatial {
		t.Fatalf("builders mutated the preset")
	}
}

func TestEffectiveSpeed(t *testing.T) {
	cases := []struct {
		speed float64
		want  float64
	}{
		{speed: 1.5, want: 1.5},
		{speed: 0, want: 1},
		{speed: -1, want: 1},
	}
	for _, tc := range cases {
		if got := Once.WithSpeed(tc.speed).EffectiveSpeed(); got != tc.want {
			t.Fatalf("EffectiveSpeed(%v) = %v, want %v", tc.speed, got, tc.want)
		}
	}
}

func TestParsePlaybackMode(t *testing.T) {
	cases := []struct {
		in      string
		want    PlaybackMode
		wantErr bool
	}{
		{in: "once", want: PlaybackOnce},
		{in: "Loop", want: PlaybackLoop},
		{in: " DESPAWN ", want: PlaybackDespawn},
		{in: "remove", want: PlaybackRemove},
		{in: "forever", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePlaybackMode(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestPlaybackModeYAML(t *testing.T) {
	var doc struct {
		Mode PlaybackMode `yaml:"mode"`
	}
	if err := yaml.Unmarshal([]byte("mode: remove\n"), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Mode != PlaybackRemove {
		t.Fatalf("mode = %v", doc.Mode)
	}
	if err := yaml.Unmarshal([]byte("mode: sometimes\n"), &doc); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

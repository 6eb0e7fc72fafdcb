package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
	"github.com/milk9111/spatialaudio/prefabs"
)

func newServer(t *testing.T) *assets.Server {
	t.Helper()
	s := assets.NewServer(assets.ServerConfig{})
	t.Cleanup(s.Wait)
	return s
}

func floatPtr(v float64) *float64 { return &v }

func TestBuildListenerPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := NewListener(w, newServer(t), 100, 50)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	name, ok := ecs.Get(w, e, component.NameComponent.Kind())
	if !ok || name.Value != "listener" {
		t.Fatalf("name = %+v", name)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.X != 100 || tr.Y != 50 || tr.ScaleX != 1 {
		t.Fatalf("transform = %+v", tr)
	}
	l, ok := ecs.Get(w, e, component.SpatialListenerComponent.Kind())
	if !ok || l.LeftEarOffset != (mgl64.Vec3{-100, 0, 0}) || l.RightEarOffset != (mgl64.Vec3{100, 0, 0}) {
		t.Fatalf("listener = %+v", l)
	}
	if p, ok := ecs.Get(w, e, component.PrefabComponent.Kind()); !ok || p.Path != "listener.yaml" {
		t.Fatalf("prefab = %+v", p)
	}
	if a, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); !ok || a.Color == nil || a.Radius != 10 {
		t.Fatalf("appearance = %+v", a)
	}
}

func TestBuildEmitterPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := SpawnAt(w, newServer(t), "emitter_hum.yaml", 10, 20)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h, ok := ecs.Get(w, e, component.AudioSourceComponent.Kind())
	if !ok || h.Path != "sounds/hum.wav" {
		t.Fatalf("handle = %+v", h)
	}
	settings, _ := ecs.Get(w, e, component.PlaybackSettingsComponent.Kind())
	want := audio.Loop.WithVolume(audio.Relative(0.9)).WithSpatial(true)
	if *settings != want {
		t.Fatalf("settings = %+v, want %+v", *settings, want)
	}
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || body.Radius != 12 || body.Mass != 1 || body.VelocityX != 90 {
		t.Fatalf("body = %+v", body)
	}
}

func TestBuildMusicPlayerPrefab(t *testing.T) {
	w := ecs.NewWorld()
	if _, err := NewMusicPlayer(w, newServer(t)); err != nil {
		t.Fatalf("build: %v", err)
	}
	if ecs.Count(w, component.MusicPlayerComponent.Kind()) != 1 {
		t.Fatalf("no music player")
	}
	reqEnt, ok := ecs.First(w, component.MusicRequestComponent.Kind())
	if !ok {
		t.Fatalf("initial track not requested")
	}
	req, _ := ecs.Get(w, reqEnt, component.MusicRequestComponent.Kind())
	if req.Track != "sounds/chime.wav" || !req.Loop || req.Volume != 0.5 {
		t.Fatalf("request = %+v", req)
	}
	if _, err := NewMusicPlayer(w, newServer(t)); err == nil {
		t.Fatalf("second music player should be rejected")
	}
}

func TestBuildFromSpecErrors(t *testing.T) {
	cases := []struct {
		name       string
		components map[string]any
	}{
		{name: "empty"},
		{name: "unknown component", components: map[string]any{"sprite": map[string]any{"image": "x.png"}}},
		{name: "audio and pitch", components: map[string]any{
			"audio": map[string]any{"file": "sounds/blip.wav"},
			"pitch": map[string]any{"frequency": 440, "duration_ms": 100},
		}},
		{name: "bad mode", components: map[string]any{"audio": map[string]any{"file": "sounds/blip.wav", "mode": "sometimes"}}},
		{name: "unsupported file", components: map[string]any{"audio": map[string]any{"file": "song.flac"}}},
		{name: "physics without transform", components: map[string]any{"physics_body": map[string]any{"radius": 3}}},
		{name: "zero ttl", components: map[string]any{"ttl": map[string]any{"frames": 0}}},
		{name: "coincident ears", components: map[string]any{"spatial_listener": map[string]any{
			"left_ear": map[string]any{"x": 0}, "right_ear": map[string]any{"x": 0},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			_, err := buildFromSpec(w, newServer(t), "test.yaml", prefabs.EntityBuildSpec{Components: tc.components})
			if err == nil {
				t.Fatalf("expected error")
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("failed build left %d entities", n)
			}
		})
	}
}

func TestPlaybackSettingsFromSpec(t *testing.T) {
	cases := []struct {
		name string
		spec prefabs.PlaybackComponentSpec
		want audio.PlaybackSettings
	}{
		{name: "defaults", want: audio.Once},
		{name: "despawn spatial", spec: prefabs.PlaybackComponentSpec{Mode: "despawn", Spatial: true}, want: audio.Despawn.WithSpatial(true)},
		{name: "absolute volume", spec: prefabs.PlaybackComponentSpec{Volume: floatPtr(0.3), Absolute: true}, want: audio.Once.WithVolume(audio.Absolute(0.3))},
		{name: "paused slow", spec: prefabs.PlaybackComponentSpec{Mode: "remove", Paused: true, Speed: 0.5}, want: audio.Remove.WithPaused().WithSpeed(0.5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := playbackSettings(tc.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestPitchPrefabComponent(t *testing.T) {
	w := ecs.NewWorld()
	server := newServer(t)
	e, err := buildFromSpec(w, server, "", prefabs.EntityBuildSpec{Components: map[string]any{
		"pitch": map[string]any{"frequency": 220, "duration_ms": 250, "mode": "despawn"},
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h, _ := ecs.Get(w, e, component.PitchSourceComponent.Kind())
	p, ok := server.Pitches.Get(*h)
	if !ok || p.Frequency != 220 || p.Duration.Milliseconds() != 250 {
		t.Fatalf("pitch = %+v", p)
	}
	if ecs.Has(w, e, component.PrefabComponent.Kind()) {
		t.Fatalf("in-memory spec should not record a prefab path")
	}
}

func TestRebuildKeepsPosition(t *testing.T) {
	w := ecs.NewWorld()
	server := newServer(t)
	old, err := SpawnAt(w, server, "emitter_pulse.yaml", 33, 44)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Rebuild(w, server, "emitter_pulse.yaml", old); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if ecs.IsAlive(w, old) {
		t.Fatalf("old entity kept")
	}
	e, ok := ecs.First(w, component.PrefabComponent.Kind())
	if !ok {
		t.Fatalf("rebuilt entity missing")
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.X != 33 || tr.Y != 44 {
		t.Fatalf("position = %v,%v", tr.X, tr.Y)
	}
}

func TestEveryEmbeddedPrefabBuilds(t *testing.T) {
	names, err := prefabs.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, name := range names {
		if name == prefabs.AudioConfigFile {
			continue
		}
		t.Run(name, func(t *testing.T) {
			w := ecs.NewWorld()
			if _, err := BuildEntity(w, newServer(t), name); err != nil {
				t.Fatalf("build: %v", err)
			}
		})
	}
}

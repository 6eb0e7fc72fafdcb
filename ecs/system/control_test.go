package system

import (
	"errors"
	"testing"

	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

func floatPtr(v float64) *float64 { return &v }

func TestPlaybackCommands(t *testing.T) {
	cases := []struct {
		name       string
		settings   audio.PlaybackSettings
		cmd        component.PlaybackCommand
		wantPaused bool
		wantVolume float64
		wantSpeed  float64
		wantEmpty  bool
	}{
		{name: "pause", settings: audio.Loop, cmd: component.PlaybackCommand{Pause: true}, wantPaused: true, wantVolume: 1, wantSpeed: 1},
		{name: "play", settings: audio.Loop.WithPaused(), cmd: component.PlaybackCommand{Play: true}, wantVolume: 1, wantSpeed: 1},
		{name: "toggle", settings: audio.Loop, cmd: component.PlaybackCommand{Toggle: true}, wantPaused: true, wantVolume: 1, wantSpeed: 1},
		{name: "volume and speed", settings: audio.Loop, cmd: component.PlaybackCommand{Volume: floatPtr(0.2), Speed: floatPtr(2)}, wantVolume: 0.2, wantSpeed: 2},
		{name: "stop", settings: audio.Loop, cmd: component.PlaybackCommand{Stop: true}, wantVolume: 1, wantSpeed: 1, wantEmpty: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, device.Config{})
			e := f.request(f.source(100), tc.settings)
			f.w.Update()

			if err := SendPlaybackCommand(f.w, e, tc.cmd); err != nil {
				t.Fatalf("send: %v", err)
			}
			f.w.Update()

			sink := plainSink(t, f.w, e)
			if sink.IsPaused() != tc.wantPaused || sink.Volume() != tc.wantVolume || sink.Speed() != tc.wantSpeed || sink.Empty() != tc.wantEmpty {
				t.Fatalf("paused=%v volume=%v speed=%v empty=%v", sink.IsPaused(), sink.Volume(), sink.Speed(), sink.Empty())
			}
			if ecs.Has(f.w, e, component.PlaybackCommandComponent.Kind()) {
				t.Fatalf("command not consumed")
			}
		})
	}
}

func TestCommandWaitsForPendingRequest(t *testing.T) {
	f := newFixture(t, device.Config{})
	h, _ := f.server.Sources.Reserve("slow.wav")
	e := f.request(h, audio.Loop)
	_ = SendPlaybackCommand(f.w, e, component.PlaybackCommand{Pause: true})

	f.w.Update()
	if !ecs.Has(f.w, e, component.PlaybackCommandComponent.Kind()) {
		t.Fatalf("command dropped before the sink existed")
	}

	f.server.Sources.Insert(h, audio.NewSourceFromFrames(testRate, make([][2]float64, 100)))
	f.w.Update()
	if !plainSink(t, f.w, e).IsPaused() {
		t.Fatalf("pending command not applied")
	}
}

func TestCommandWithoutAudioIsDropped(t *testing.T) {
	f := newFixture(t, device.Config{})
	e := ecs.CreateEntity(f.w)
	_ = SendPlaybackCommand(f.w, e, component.PlaybackCommand{Play: true})
	f.w.Update()
	if ecs.Has(f.w, e, component.PlaybackCommandComponent.Kind()) {
		t.Fatalf("command kept on an entity without audio")
	}
}

func TestSendPlaybackCommandAll(t *testing.T) {
	f := newFixture(t, device.Config{})
	f.listener(0, 0)
	plain := f.request(f.source(100), audio.Loop)
	spatial := f.emitter(5, 0, audio.Loop)
	idle := ecs.CreateEntity(f.w)
	f.w.Update()

	if got := SendPlaybackCommandAll(f.w, component.PlaybackCommand{Pause: true}); got != 2 {
		t.Fatalf("reached %d entities, want 2", got)
	}
	if ecs.Has(f.w, idle, component.PlaybackCommandComponent.Kind()) {
		t.Fatalf("entity without a sink got a command")
	}
	f.w.Update()

	if !plainSink(t, f.w, plain).IsPaused() {
		t.Fatalf("plain sink still playing")
	}
	if !spatialSink(t, f.w, spatial).IsPaused() {
		t.Fatalf("spatial sink still playing")
	}
}

func TestPlaybackStateString(t *testing.T) {
	cases := map[PlaybackState]string{
		PlaybackNone:         "none",
		PlaybackRequested:    "requested",
		PlaybackLooping:      "looping",
		PlaybackAwaitingReap: "awaiting_reap",
		PlaybackState(99):    "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%d: got %q want %q", state, got, want)
		}
	}
}

func musicTrack(t *testing.T, w *ecs.World) (ecs.Entity, string) {
	t.Helper()
	e, ok := ecs.First(w, component.MusicTrackComponent.Kind())
	if !ok {
		return 0, ""
	}
	track, _ := ecs.Get(w, e, component.MusicTrackComponent.Kind())
	return e, track.Track
}

func TestMusicSwitchFadesThenStartsNext(t *testing.T) {
	f := newFixture(t, device.Config{}, func(f *fixture) ecs.System { return NewMusicSystem(f.server) })
	for _, name := range []string{"a.wav", "b.wav"} {
		h, _ := f.server.Sources.Reserve(name)
		f.server.Sources.Insert(h, audio.NewSourceFromFrames(testRate, make([][2]float64, 1000)))
	}
	EnsureMusicPlayer(f.w)

	RequestMusic(f.w, "a.wav")
	f.w.Update()
	first, track := musicTrack(t, f.w)
	if track != "a.wav" {
		t.Fatalf("track = %q", track)
	}
	if PlaybackStatus(f.w, first) != PlaybackLooping {
		t.Fatalf("music should loop, status %v", PlaybackStatus(f.w, first))
	}

	RequestMusicWithOptions(f.w, &component.MusicRequest{Track: "b.wav", Loop: true, FadeOutFrames: 2})
	f.w.Update()
	if got := plainSink(t, f.w, first).Volume(); got != 0.5 {
		t.Fatalf("fade volume = %v, want 0.5", got)
	}

	f.w.Update()
	if ecs.IsAlive(f.w, first) {
		t.Fatalf("old track still alive")
	}
	second, track := musicTrack(t, f.w)
	if track != "b.wav" {
		t.Fatalf("track = %q", track)
	}
	plainSink(t, f.w, second)

	StopMusic(f.w)
	for i := 0; i < defaultMusicFadeFrames+1; i++ {
		f.w.Update()
	}
	if _, track := musicTrack(t, f.w); track != "" {
		t.Fatalf("music still playing %q", track)
	}
}

const chimeScript = `
update := func(engine, state, frame) {
	if frame == 0 {
		state.id = engine.tone(440, 1, {mode: "loop", volume: 0.5})
	}
	if frame == 2 {
		engine.stop(state.id)
	}
}
`

func TestCueScriptStartsAndStopsTones(t *testing.T) {
	f := newFixture(t, device.Config{}, func(f *fixture) ecs.System {
		return NewCueScriptSystem(f.server).WithScriptLoader(func(name string) ([]byte, error) {
			if name != "chimes.tengo" {
				return nil, errors.New("missing")
			}
			return []byte(chimeScript), nil
		})
	})

	owner := ecs.CreateEntity(f.w)
	_ = ecs.Add(f.w, owner, component.CueScriptComponent.Kind(), &component.CueScript{Path: "chimes.tengo"})

	f.w.Update()
	tones := ecs.Query(f.w, component.PitchSourceComponent.Kind())
	if len(tones) != 1 {
		t.Fatalf("expected 1 tone, got %d", len(tones))
	}
	tone := tones[0]
	sink := plainSink(t, f.w, tone)
	if sink.Volume() != 0.5 {
		t.Fatalf("volume = %v", sink.Volume())
	}
	if PlaybackStatus(f.w, tone) != PlaybackLooping {
		t.Fatalf("status = %v", PlaybackStatus(f.w, tone))
	}

	f.w.Update()
	f.w.Update()
	if ecs.IsAlive(f.w, tone) {
		t.Fatalf("stop() did not remove the tone")
	}
	if !sink.Disposed() {
		t.Fatalf("sink not disposed")
	}
}

func TestCueScriptLoadErrorRemovesComponent(t *testing.T) {
	f := newFixture(t, device.Config{}, func(f *fixture) ecs.System {
		return NewCueScriptSystem(f.server).WithScriptLoader(func(string) ([]byte, error) {
			return nil, errors.New("missing")
		})
	})
	owner := ecs.CreateEntity(f.w)
	_ = ecs.Add(f.w, owner, component.CueScriptComponent.Kind(), &component.CueScript{Path: "nope.tengo"})
	f.w.Update()
	if ecs.Has(f.w, owner, component.CueScriptComponent.Kind()) {
		t.Fatalf("broken cue script kept")
	}
}

func TestCueSettings(t *testing.T) {
	cases := []struct {
		name    string
		opts    map[string]any
		want    audio.PlaybackSettings
		wantErr bool
	}{
		{name: "defaults to despawn", opts: nil, want: audio.Despawn},
		{name: "loop relative", opts: map[string]any{"mode": "loop", "volume": 0.5}, want: audio.Loop.WithVolume(audio.Relative(0.5))},
		{name: "absolute spatial", opts: map[string]any{"volume": 0.2, "absolute": true, "spatial": true}, want: audio.Despawn.WithVolume(audio.Absolute(0.2)).WithSpatial(true)},
		{name: "paused fast", opts: map[string]any{"paused": true, "speed": 2.0}, want: audio.Despawn.WithPaused().WithSpeed(2)},
		{name: "bad mode", opts: map[string]any{"mode": "forever"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cueSettings(tc.opts)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestPhysicsMovesEmitter(t *testing.T) {
	physics := NewPhysicsSystem(200, 200)
	f := newFixture(t, device.Config{}, func(*fixture) ecs.System { return physics })
	e := f.emitter(100, 100, audio.Loop)
	_ = ecs.Add(f.w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: 4, VelocityX: 60})

	f.w.Update()
	sink := spatialSink(t, f.w, e)
	for i := 0; i < 10; i++ {
		f.w.Update()
	}

	tr, _ := ecs.Get(f.w, e, component.TransformComponent.Kind())
	if tr.X <= 100 {
		t.Fatalf("body did not move: x=%v", tr.X)
	}
	if got := sink.EmitterPosition().X(); got != tr.X {
		t.Fatalf("emitter x = %v, transform x = %v", got, tr.X)
	}

	ecs.DestroyEntity(f.w, e)
	f.w.Update()
	if len(physics.entities) != 0 {
		t.Fatalf("body not cleaned up")
	}
}

func TestTTLDestroysEntity(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(NewTTLSystem())
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: 2})

	w.Update()
	if !ecs.IsAlive(w, e) {
		t.Fatalf("destroyed early")
	}
	w.Update()
	if ecs.IsAlive(w, e) {
		t.Fatalf("ttl expired but entity alive")
	}
}

func TestTransformSystemResolvesGlobal(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(NewTransformSystem())
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: 1, Y: 2, Z: 3})
	w.Update()

	g, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	if !ok {
		t.Fatalf("no global transform")
	}
	if g.Translation.X() != 1 || g.Translation.Y() != 2 || g.Translation.Z() != 3 {
		t.Fatalf("translation = %v", g.Translation)
	}
}

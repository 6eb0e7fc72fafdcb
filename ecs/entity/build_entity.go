package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
	"github.com/milk9111/spatialaudio/ecs/system"
	"github.com/milk9111/spatialaudio/prefabs"
)

var errPlaybackConflict = errors.New("audio and pitch are exclusive")

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
	Server     *assets.Server
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"name":             addName,
	"transform":        addTransform,
	"spatial_listener": addSpatialListener,
	"physics_body":     addPhysicsBody,
	"appearance":       addAppearance,
	"audio":            addAudio,
	"pitch":            addPitch,
	"cue_script":       addCueScript,
	"ttl":              addTTL,
	"music_player":     addMusicPlayer,
}

// Transforms go first so sounds on the same prefab start at the right place.
var componentBuildOrder = []string{
	"name",
	"transform",
	"spatial_listener",
	"physics_body",
	"appearance",
	"audio",
	"pitch",
	"cue_script",
	"ttl",
	"music_player",
}

func BuildEntity(w *ecs.World, server *assets.Server, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return buildFromSpec(w, server, prefabPath, spec)
}

func buildFromSpec(w *ecs.World, server *assets.Server, prefabPath string, spec entityPrefabSpec) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Server: server}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for components %s", prefabPath, strings.Join(names, ", "))
	}

	if prefabPath != "" {
		_ = ecs.Add(w, e, component.PrefabComponent.Kind(), &component.Prefab{Path: prefabPath})
	}
	log.Debugf("Built %v from %s", e, prefabPath)
	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
		body.Body.SetPosition(cp.Vector{X: x, Y: y})
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addName(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[component.Name](raw)
	if err != nil {
		return fmt.Errorf("decode name spec: %w", err)
	}
	return ecs.Add(w, e, component.NameComponent.Kind(), &spec)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	if spec.ScaleZ == 0 {
		spec.ScaleZ = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Z:        spec.Z,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		ScaleZ:   spec.ScaleZ,
		Rotation: spec.Rotation,
	})
}

type spatialListenerSpec = prefabs.SpatialListenerComponentSpec

func addSpatialListener(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[spatialListenerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode spatial_listener spec: %w", err)
	}
	listener := audio.DefaultSpatialListener()
	if spec.Gap > 0 {
		listener = audio.NewSpatialListener(spec.Gap)
	}
	if spec.LeftEar != nil {
		listener.LeftEarOffset = spec.LeftEar.Vec3()
	}
	if spec.RightEar != nil {
		listener.RightEarOffset = spec.RightEar.Vec3()
	}
	if listener.LeftEarOffset.ApproxEqual(listener.RightEarOffset) {
		return fmt.Errorf("listener ears coincide")
	}
	return ecs.Add(w, e, component.SpatialListenerComponent.Kind(), &listener)
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if !spec.Static && spec.Mass == 0 {
		spec.Mass = 1
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		return fmt.Errorf("physics_body requires a transform")
	}

	return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Radius:     spec.Radius,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Static:     spec.Static,
		VelocityX:  spec.VelocityX,
		VelocityY:  spec.VelocityY,
	})
}

type appearanceSpec = prefabs.AppearanceComponentSpec

func addAppearance(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[appearanceSpec](raw)
	if err != nil {
		return fmt.Errorf("decode appearance spec: %w", err)
	}
	if spec.Radius <= 0 {
		spec.Radius = 6
	}
	return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{
		Color:  spec.Color.Color,
		Radius: spec.Radius,
	})
}

type audioSpec = prefabs.AudioComponentSpec

func addAudio(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[audioSpec](raw)
	if err != nil {
		return fmt.Errorf("decode audio spec: %w", err)
	}
	if strings.TrimSpace(spec.File) == "" {
		return fmt.Errorf("audio needs a file")
	}
	if !audio.Supported(spec.File) {
		return fmt.Errorf("%s: %w", spec.File, audio.ErrUnknownFormat)
	}
	if ctx.Server == nil {
		return fmt.Errorf("audio %s: no asset server", spec.File)
	}
	settings, err := playbackSettings(spec.PlaybackComponentSpec)
	if err != nil {
		return err
	}

	h := ctx.Server.Load(spec.File)
	if err := ecs.Add(w, e, component.AudioSourceComponent.Kind(), &h); err != nil {
		return err
	}
	return ecs.Add(w, e, component.PlaybackSettingsComponent.Kind(), &settings)
}

type pitchSpec = prefabs.PitchComponentSpec

func addPitch(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[pitchSpec](raw)
	if err != nil {
		return fmt.Errorf("decode pitch spec: %w", err)
	}
	if ecs.Has(w, e, component.AudioSourceComponent.Kind()) {
		return errPlaybackConflict
	}
	if spec.Frequency <= 0 || spec.DurationMS <= 0 {
		return fmt.Errorf("pitch needs a positive frequency and duration")
	}
	if ctx.Server == nil {
		return fmt.Errorf("pitch: no asset server")
	}
	settings, err := playbackSettings(spec.PlaybackComponentSpec)
	if err != nil {
		return err
	}

	h := ctx.Server.AddPitch(audio.NewPitch(spec.Frequency, time.Duration(spec.DurationMS)*time.Millisecond))
	if err := ecs.Add(w, e, component.PitchSourceComponent.Kind(), &h); err != nil {
		return err
	}
	return ecs.Add(w, e, component.PlaybackSettingsComponent.Kind(), &settings)
}

func playbackSettings(spec prefabs.PlaybackComponentSpec) (audio.PlaybackSettings, error) {
	settings := audio.DefaultPlaybackSettings()
	if spec.Mode != "" {
		mode, err := audio.ParsePlaybackMode(spec.Mode)
		if err != nil {
			return settings, err
		}
		settings.Mode = mode
	}
	if spec.Volume != nil {
		if spec.Absolute {
			settings.Volume = audio.Absolute(*spec.Volume)
		} else {
			settings.Volume = audio.Relative(*spec.Volume)
		}
	}
	if spec.Speed != 0 {
		if spec.Speed < 0 {
			return settings, fmt.Errorf("speed must be positive, got %v", spec.Speed)
		}
		settings.Speed = spec.Speed
	}
	settings.Paused = spec.Paused
	settings.Spatial = spec.Spatial
	return settings, nil
}

type cueScriptSpec = prefabs.CueScriptComponentSpec

func addCueScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cueScriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode cue_script spec: %w", err)
	}
	if strings.TrimSpace(spec.Script) == "" {
		return fmt.Errorf("cue_script needs a script")
	}
	return ecs.Add(w, e, component.CueScriptComponent.Kind(), &component.CueScript{
		Path: spec.Script,
		Vars: spec.Vars,
	})
}

type ttlSpec = prefabs.TTLComponentSpec

func addTTL(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[ttlSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ttl spec: %w", err)
	}
	if spec.Frames <= 0 {
		return fmt.Errorf("ttl frames must be positive")
	}
	return ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: spec.Frames})
}

type musicPlayerSpec = prefabs.MusicPlayerComponentSpec

func addMusicPlayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[musicPlayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode music_player spec: %w", err)
	}
	if _, ok := ecs.First(w, component.MusicPlayerComponent.Kind()); ok {
		return fmt.Errorf("music player already exists")
	}
	if err := ecs.Add(w, e, component.MusicPlayerComponent.Kind(), &component.MusicPlayer{TrackVolumes: map[string]float64{}}); err != nil {
		return err
	}
	if spec.Track != "" {
		loop := true
		if spec.Loop != nil {
			loop = *spec.Loop
		}
		system.RequestMusicWithOptions(w, &component.MusicRequest{Track: spec.Track, Volume: spec.Volume, Loop: loop})
	}
	return nil
}

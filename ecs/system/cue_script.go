package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
	"github.com/milk9111/spatialaudio/prefabs"
)

// CueScriptSystem runs a tengo script per CueScript entity every frame. The
// script defines update(engine, state, frame) and uses the engine functions
// to start and stop sounds.
type CueScriptSystem struct {
	server     *assets.Server
	loadScript func(name string) ([]byte, error)
	cache      map[ecs.Entity]*cueRuntime
}

type cueRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
	frame      int
	spawned    []ecs.Entity
}

const cueDispatchScript = `
update(__engine, __state, __frame)
`

func NewCueScriptSystem(server *assets.Server) *CueScriptSystem {
	return &CueScriptSystem{
		server:     server,
		loadScript: prefabs.LoadScript,
		cache:      map[ecs.Entity]*cueRuntime{},
	}
}

// WithScriptLoader replaces where script sources come from.
func (c *CueScriptSystem) WithScriptLoader(load func(name string) ([]byte, error)) *CueScriptSystem {
	c.loadScript = load
	return c
}

// Invalidate drops compiled scripts so edited files are picked up.
func (c *CueScriptSystem) Invalidate() {
	c.cache = map[ecs.Entity]*cueRuntime{}
}

func (c *CueScriptSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	seen := make(map[ecs.Entity]struct{})
	ecs.ForEach(w, component.CueScriptComponent.Kind(), func(e ecs.Entity, cue *component.CueScript) {
		seen[e] = struct{}{}
		rt, err := c.runtime(e, cue)
		if err != nil {
			log.Warnf("Cue script %q on %v: %v", cue.Path, e, err)
			ecs.Remove(w, e, component.CueScriptComponent.Kind())
			return
		}
		rt.prune(w)
		if err := rt.run(buildCueEngine(w, c.server, e, rt)); err != nil {
			log.Warnf("Cue script %q on %v: update: %v", cue.Path, e, err)
		}
		rt.frame++
	})

	for e := range c.cache {
		if _, ok := seen[e]; !ok {
			delete(c.cache, e)
		}
	}
}

func (c *CueScriptSystem) runtime(e ecs.Entity, cue *component.CueScript) (*cueRuntime, error) {
	if strings.TrimSpace(cue.Path) == "" {
		return nil, fmt.Errorf("empty script path")
	}
	if rt, ok := c.cache[e]; ok && rt != nil && rt.scriptPath == cue.Path {
		return rt, nil
	}

	scriptBytes, err := c.loadScript(cue.Path)
	if err != nil {
		return nil, err
	}

	src := string(scriptBytes) + "\n" + cueDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__frame", 0)
	for name, v := range cue.Vars {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("var %q: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &cueRuntime{
		scriptPath: cue.Path,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	c.cache[e] = rt
	return rt, nil
}

func (rt *cueRuntime) run(engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__frame", rt.frame); err != nil {
		return err
	}
	return rt.compiled.Run()
}

// prune forgets spawned entities that are gone.
func (rt *cueRuntime) prune(w *ecs.World) {
	alive := rt.spawned[:0]
	for _, e := range rt.spawned {
		if ecs.IsAlive(w, e) {
			alive = append(alive, e)
		}
	}
	rt.spawned = alive
}

func buildCueEngine(w *ecs.World, server *assets.Server, owner ecs.Entity, rt *cueRuntime) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	spawn := func(attach func(e ecs.Entity) error, opts map[string]any) (tengo.Object, error) {
		settings, err := cueSettings(opts)
		if err != nil {
			return tengo.FalseValue, nil
		}
		e := ecs.CreateEntity(w)
		if err := attach(e); err != nil {
			ecs.DestroyEntity(w, e)
			return tengo.FalseValue, nil
		}
		_ = ecs.Add(w, e, component.PlaybackSettingsComponent.Kind(), &settings)

		t := cueTransform(w, owner, opts)
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), &t)
		if frames := int(floatOpt(opts, "ttl", 0)); frames > 0 {
			_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: frames})
		}
		rt.spawned = append(rt.spawned, e)
		return &tengo.Int{Value: int64(e)}, nil
	}

	values["play"] = &tengo.UserFunction{Name: "play", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if server == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		path := strings.TrimSpace(objectAsString(args[0]))
		if path == "" {
			return tengo.FalseValue, nil
		}
		opts := optsArg(args, 1)
		return spawn(func(e ecs.Entity) error {
			h := server.Load(path)
			return ecs.Add(w, e, component.AudioSourceComponent.Kind(), &h)
		}, opts)
	}}

	values["tone"] = &tengo.UserFunction{Name: "tone", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if server == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		freq, ok := objectAsFloat(args[0])
		if !ok || freq <= 0 {
			return tengo.FalseValue, nil
		}
		seconds, ok := objectAsFloat(args[1])
		if !ok || seconds <= 0 {
			return tengo.FalseValue, nil
		}
		opts := optsArg(args, 2)
		return spawn(func(e ecs.Entity) error {
			h := server.AddPitch(audio.NewPitch(freq, time.Duration(seconds*float64(time.Second))))
			return ecs.Add(w, e, component.PitchSourceComponent.Kind(), &h)
		}, opts)
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id, ok := args[0].(*tengo.Int)
		if !ok {
			return tengo.FalseValue, nil
		}
		e := ecs.Entity(id.Value)
		for _, s := range rt.spawned {
			if s == e {
				return tengo.FromInterface(ecs.DestroyEntity(w, e))
			}
		}
		return tengo.FalseValue, nil
	}}

	values["stop_all"] = &tengo.UserFunction{Name: "stop_all", Value: func(args ...tengo.Object) (tengo.Object, error) {
		for _, e := range rt.spawned {
			ecs.DestroyEntity(w, e)
		}
		rt.spawned = rt.spawned[:0]
		return tengo.TrueValue, nil
	}}

	values["playing"] = &tengo.UserFunction{Name: "playing", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id, ok := args[0].(*tengo.Int)
		if !ok {
			return tengo.FalseValue, nil
		}
		switch PlaybackStatus(w, ecs.Entity(id.Value)) {
		case PlaybackRequested, PlaybackPlaying, PlaybackLooping, PlaybackPaused:
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["active"] = &tengo.UserFunction{Name: "active", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(len(rt.spawned))}, nil
	}}

	values["set_global_volume"] = &tengo.UserFunction{Name: "set_global_volume", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		v, ok := objectAsFloat(args[0])
		if !ok || v < 0 {
			return tengo.FalseValue, nil
		}
		SetGlobalVolume(w, audio.NewGlobalVolume(v))
		return tengo.TrueValue, nil
	}}

	values["music"] = &tengo.UserFunction{Name: "music", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			StopMusic(w)
			return tengo.TrueValue, nil
		}
		RequestMusic(w, objectAsString(args[0]))
		return tengo.TrueValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y := 0.0, 0.0
		if t, ok := ecs.Get(w, owner, component.TransformComponent.Kind()); ok {
			x, y = t.X, t.Y
		}
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// cueSettings reads mode, volume, absolute, speed, paused and spatial.
// Scripted cues default to despawn so they clean up after themselves.
func cueSettings(opts map[string]any) (audio.PlaybackSettings, error) {
	settings := audio.Despawn
	if name := stringOpt(opts, "mode", ""); name != "" {
		mode, err := audio.ParsePlaybackMode(name)
		if err != nil {
			return settings, err
		}
		settings.Mode = mode
	}
	volume := floatOpt(opts, "volume", 1)
	if boolOpt(opts, "absolute", false) {
		settings.Volume = audio.Absolute(volume)
	} else {
		settings.Volume = audio.Relative(volume)
	}
	settings.Speed = floatOpt(opts, "speed", 1)
	settings.Paused = boolOpt(opts, "paused", false)
	settings.Spatial = boolOpt(opts, "spatial", false)
	return settings, nil
}

func cueTransform(w *ecs.World, owner ecs.Entity, opts map[string]any) component.Transform {
	t := component.Transform{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
	if ot, ok := ecs.Get(w, owner, component.TransformComponent.Kind()); ok {
		t.X, t.Y, t.Z = ot.X, ot.Y, ot.Z
	}
	t.X = floatOpt(opts, "x", t.X)
	t.Y = floatOpt(opts, "y", t.Y)
	return t
}

func optsArg(args []tengo.Object, i int) map[string]any {
	if len(args) <= i {
		return nil
	}
	m, _ := objectToAny(args[i]).(map[string]any)
	return m
}

func floatOpt(opts map[string]any, key string, def float64) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func boolOpt(opts map[string]any, key string, def bool) bool {
	if v, ok := opts[key].(bool); ok {
		return v
	}
	return def
}

func stringOpt(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return def
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	}
	return 0, false
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}

package system

import (
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// AudioOptions configure the audio settings singleton.
type AudioOptions struct {
	GlobalVolume audio.GlobalVolume
	SpatialScale audio.SpatialScale
}

func DefaultAudioOptions() AudioOptions {
	return AudioOptions{
		GlobalVolume: audio.DefaultGlobalVolume(),
		SpatialScale: audio.DefaultSpatialScale(),
	}
}

// EnsureAudioSettings creates the settings singleton if it does not exist,
// otherwise overwrites its values with opts.
func EnsureAudioSettings(w *ecs.World, opts AudioOptions) ecs.Entity {
	ent, ok := ecs.First(w, component.GlobalVolumeComponent.Kind())
	if !ok {
		ent = ecs.CreateEntity(w)
	}
	gv := opts.GlobalVolume
	scale := opts.SpatialScale
	_ = ecs.Add(w, ent, component.GlobalVolumeComponent.Kind(), &gv)
	_ = ecs.Add(w, ent, component.SpatialScaleComponent.Kind(), &scale)
	return ent
}

// SetGlobalVolume changes the volume future sinks are created with. Playing
// sinks keep the volume they started with.
func SetGlobalVolume(w *ecs.World, v audio.GlobalVolume) {
	ent, ok := ecs.First(w, component.GlobalVolumeComponent.Kind())
	if !ok {
		opts := DefaultAudioOptions()
		opts.GlobalVolume = v
		EnsureAudioSettings(w, opts)
		return
	}
	_ = ecs.Add(w, ent, component.GlobalVolumeComponent.Kind(), &v)
}

// SetSpatialScale changes the scale and re-pans every spatial sink on the
// next listener sync.
func SetSpatialScale(w *ecs.World, s audio.SpatialScale) {
	ent, ok := ecs.First(w, component.SpatialScaleComponent.Kind())
	if !ok {
		opts := DefaultAudioOptions()
		opts.SpatialScale = s
		EnsureAudioSettings(w, opts)
		return
	}
	_ = ecs.Add(w, ent, component.SpatialScaleComponent.Kind(), &s)
}

func globalVolume(w *ecs.World) audio.GlobalVolume {
	ent, ok := ecs.First(w, component.GlobalVolumeComponent.Kind())
	if !ok {
		return audio.DefaultGlobalVolume()
	}
	v, ok := ecs.Get(w, ent, component.GlobalVolumeComponent.Kind())
	if !ok {
		return audio.DefaultGlobalVolume()
	}
	return *v
}

func spatialScale(w *ecs.World) audio.SpatialScale {
	ent, ok := ecs.First(w, component.SpatialScaleComponent.Kind())
	if !ok {
		return audio.DefaultSpatialScale()
	}
	s, ok := ecs.Get(w, ent, component.SpatialScaleComponent.Kind())
	if !ok {
		return audio.DefaultSpatialScale()
	}
	return *s
}

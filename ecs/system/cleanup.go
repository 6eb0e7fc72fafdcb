package system

import (
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// CleanupSystem reaps finished Despawn and Remove playbacks of one asset
// kind. Loop sinks never empty and Once playbacks carry no marker, so neither
// is touched.
type CleanupSystem[T audio.Decodable] struct {
	out  *device.Output
	kind component.ComponentKind[assets.Handle[T]]
}

func NewCleanupSystem[T audio.Decodable](out *device.Output, handle component.ComponentHandle[assets.Handle[T]]) *CleanupSystem[T] {
	return &CleanupSystem[T]{out: out, kind: handle.Kind()}
}

type finished struct {
	entity  ecs.Entity
	asset   string
	spatial bool
}

func (s *CleanupSystem[T]) Update(w *ecs.World) {
	if w == nil || !s.out.Available() {
		return
	}

	var despawn, remove []finished

	ecs.ForEach3(w, s.kind, component.AudioSinkComponent.Kind(), component.PlaybackDespawnMarkerComponent.Kind(),
		func(e ecs.Entity, h *assets.Handle[T], sink *component.AudioSink, _ *component.PlaybackDespawnMarker) {
			if sink.Sink.Empty() {
				despawn = append(despawn, finished{entity: e, asset: h.String()})
			}
		})
	ecs.ForEach3(w, s.kind, component.SpatialAudioSinkComponent.Kind(), component.PlaybackDespawnMarkerComponent.Kind(),
		func(e ecs.Entity, h *assets.Handle[T], sink *component.SpatialAudioSink, _ *component.PlaybackDespawnMarker) {
			if sink.Sink.Empty() {
				despawn = append(despawn, finished{entity: e, asset: h.String(), spatial: true})
			}
		})
	ecs.ForEach3(w, s.kind, component.AudioSinkComponent.Kind(), component.PlaybackRemoveMarkerComponent.Kind(),
		func(e ecs.Entity, h *assets.Handle[T], sink *component.AudioSink, _ *component.PlaybackRemoveMarker) {
			if sink.Sink.Empty() {
				remove = append(remove, finished{entity: e, asset: h.String()})
			}
		})
	ecs.ForEach3(w, s.kind, component.SpatialAudioSinkComponent.Kind(), component.PlaybackRemoveMarkerComponent.Kind(),
		func(e ecs.Entity, h *assets.Handle[T], sink *component.SpatialAudioSink, _ *component.PlaybackRemoveMarker) {
			if sink.Sink.Empty() {
				remove = append(remove, finished{entity: e, asset: h.String(), spatial: true})
			}
		})

	for _, f := range despawn {
		if !ecs.DestroyEntity(w, f.entity) {
			continue
		}
		log.Debugf("Despawned %v after %s finished", f.entity, f.asset)
		pushPlaybackEvent(w, EventPlaybackFinished, PlaybackEvent{
			Entity:    f.entity,
			Asset:     f.asset,
			Mode:      audio.PlaybackDespawn,
			Spatial:   f.spatial,
			Despawned: true,
		})
	}

	for _, f := range remove {
		ecs.Remove(w, f.entity, s.kind)
		ecs.Remove(w, f.entity, component.PlaybackSettingsComponent.Kind())
		if f.spatial {
			ecs.Remove(w, f.entity, component.SpatialAudioSinkComponent.Kind())
		} else {
			ecs.Remove(w, f.entity, component.AudioSinkComponent.Kind())
		}
		ecs.Remove(w, f.entity, component.PlaybackRemoveMarkerComponent.Kind())
		log.Debugf("Removed audio from %v after %s finished", f.entity, f.asset)
		pushPlaybackEvent(w, EventPlaybackFinished, PlaybackEvent{
			Entity:  f.entity,
			Asset:   f.asset,
			Mode:    audio.PlaybackRemove,
			Spatial: f.spatial,
		})
	}
}

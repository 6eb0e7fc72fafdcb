package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// PlaybackSystem turns playback requests into live sinks. A request is an
// entity carrying a Handle[T] and PlaybackSettings but no sink yet; one
// instance runs per playable asset kind.
type PlaybackSystem[T audio.Decodable] struct {
	out    *device.Output
	assets *assets.Assets[T]
	kind   component.ComponentKind[assets.Handle[T]]
}

func NewPlaybackSystem[T audio.Decodable](out *device.Output, store *assets.Assets[T], handle component.ComponentHandle[assets.Handle[T]]) *PlaybackSystem[T] {
	return &PlaybackSystem[T]{out: out, assets: store, kind: handle.Kind()}
}

func (s *PlaybackSystem[T]) Update(w *ecs.World) {
	if w == nil || !s.out.Available() {
		return
	}

	var global audio.GlobalVolume
	var scale audio.SpatialScale
	resolved := false

	ecs.ForEach2(w, s.kind, component.PlaybackSettingsComponent.Kind(), func(e ecs.Entity, h *assets.Handle[T], settings *audio.PlaybackSettings) {
		if ecs.Has(w, e, component.AudioSinkComponent.Kind()) || ecs.Has(w, e, component.SpatialAudioSinkComponent.Kind()) {
			return
		}
		src, ok := s.assets.Get(*h)
		if !ok {
			// not loaded yet, try again next frame
			return
		}
		if !resolved {
			global = globalVolume(w)
			scale = spatialScale(w)
			resolved = true
		}

		if settings.Spatial {
			left, right := listenerEars(w, scale, true)
			emitter := emitterPosition(w, e, scale)
			spatial, err := s.out.NewSpatialSink(emitter, left, right)
			if err != nil {
				log.Warnf("Failed to open spatial sink for %v (%s): %v", e, h, err)
				return
			}
			s.start(spatial, src, *settings, global)
			_ = ecs.Add(w, e, component.SpatialAudioSinkComponent.Kind(), &component.SpatialAudioSink{Sink: spatial})
		} else {
			plain, err := s.out.NewSink()
			if err != nil {
				log.Warnf("Failed to open sink for %v (%s): %v", e, h, err)
				return
			}
			s.start(plain, src, *settings, global)
			_ = ecs.Add(w, e, component.AudioSinkComponent.Kind(), &component.AudioSink{Sink: plain})
		}

		switch settings.Mode {
		case audio.PlaybackDespawn:
			_ = ecs.Add(w, e, component.PlaybackDespawnMarkerComponent.Kind(), &component.PlaybackDespawnMarker{})
		case audio.PlaybackRemove:
			_ = ecs.Add(w, e, component.PlaybackRemoveMarkerComponent.Kind(), &component.PlaybackRemoveMarker{})
		}

		log.Debugf("Playing %s on %v (%s, spatial=%v)", h, e, settings.Mode, settings.Spatial)
		pushPlaybackEvent(w, EventPlaybackStarted, PlaybackEvent{
			Entity:  e,
			Asset:   h.String(),
			Mode:    settings.Mode,
			Spatial: settings.Spatial,
		})
	})
}

// start configures a fresh sink and queues the sound. Speed, volume and
// pause state are set before anything is appended.
func (s *PlaybackSystem[T]) start(sink device.Playback, src T, settings audio.PlaybackSettings, global audio.GlobalVolume) {
	sink.SetSpeed(settings.EffectiveSpeed())
	sink.SetVolume(settings.Volume.Resolve(global))
	if settings.Paused {
		sink.Pause()
	}
	if settings.Mode == audio.PlaybackLoop {
		sink.Append(audio.Repeat(src), src.Format())
		return
	}
	stream, format := src.Decoder()
	sink.Append(stream, format)
}

// listenerEars resolves the ear positions from the oldest listener, or the
// default geometry around the origin when there is none.
func listenerEars(w *ecs.World, scale audio.SpatialScale, warn bool) (left, right mgl64.Vec3) {
	_, listener, gt, ok := activeListener(w, warn)
	if !ok {
		return audio.DefaultEarPositions(scale)
	}
	return audio.EarPositions(gt.Transform, *listener, scale)
}

// activeListener picks the oldest entity with both a SpatialListener and a
// GlobalTransform. A listener with no position is not a listener yet.
func activeListener(w *ecs.World, warn bool) (ecs.Entity, *audio.SpatialListener, *component.GlobalTransform, bool) {
	var listeners []ecs.Entity
	for _, e := range ecs.Query(w, component.SpatialListenerComponent.Kind()) {
		if ecs.Has(w, e, component.GlobalTransformComponent.Kind()) {
			listeners = append(listeners, e)
		}
	}
	if len(listeners) == 0 {
		return ecs.NoEntity, nil, nil, false
	}
	if len(listeners) > 1 && warn {
		log.Warnf("Multiple spatial listeners found; using the first created, %v", listeners[0])
	}
	l, _ := ecs.Get(w, listeners[0], component.SpatialListenerComponent.Kind())
	gt, _ := ecs.Get(w, listeners[0], component.GlobalTransformComponent.Kind())
	return listeners[0], l, gt, true
}

func emitterPosition(w *ecs.World, e ecs.Entity, scale audio.SpatialScale) mgl64.Vec3 {
	gt, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	if !ok {
		log.Warnf("Spatial audio on %v has no GlobalTransform; playing at the origin", e)
		return mgl64.Vec3{}
	}
	return scale.Apply(gt.Translation)
}

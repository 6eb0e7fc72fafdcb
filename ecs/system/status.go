package system

import (
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// PlaybackState is derived from which audio components an entity carries.
type PlaybackState uint8

const (
	PlaybackNone PlaybackState = iota
	// PlaybackRequested has a request but no sink yet.
	PlaybackRequested
	PlaybackPlaying
	PlaybackPaused
	PlaybackLooping
	// PlaybackAwaitingReap finished and will be despawned or stripped.
	PlaybackAwaitingReap
	// PlaybackFinished finished and keeps its sink (Once).
	PlaybackFinished
)

var playbackStateNames = [...]string{"none", "requested", "playing", "paused", "looping", "awaiting_reap", "finished"}

func (s PlaybackState) String() string {
	if int(s) < len(playbackStateNames) {
		return playbackStateNames[s]
	}
	return "unknown"
}

// PlaybackStatus reports where e is in the playback lifecycle.
func PlaybackStatus(w *ecs.World, e ecs.Entity) PlaybackState {
	if !ecs.IsAlive(w, e) {
		return PlaybackNone
	}
	sink, ok := sinkOf(w, e)
	if !ok {
		if ecs.Has(w, e, component.PlaybackSettingsComponent.Kind()) &&
			(ecs.Has(w, e, component.AudioSourceComponent.Kind()) || ecs.Has(w, e, component.PitchSourceComponent.Kind())) {
			return PlaybackRequested
		}
		return PlaybackNone
	}

	if sink.Empty() {
		if ecs.Has(w, e, component.PlaybackDespawnMarkerComponent.Kind()) || ecs.Has(w, e, component.PlaybackRemoveMarkerComponent.Kind()) {
			return PlaybackAwaitingReap
		}
		return PlaybackFinished
	}
	if sink.IsPaused() {
		return PlaybackPaused
	}
	if settings, ok := ecs.Get(w, e, component.PlaybackSettingsComponent.Kind()); ok && settings.Mode == audio.PlaybackLoop {
		return PlaybackLooping
	}
	return PlaybackPlaying
}

// sinkOf returns e's live sink, plain or spatial.
func sinkOf(w *ecs.World, e ecs.Entity) (device.Playback, bool) {
	if s, ok := ecs.Get(w, e, component.AudioSinkComponent.Kind()); ok && s.Sink != nil {
		return s.Sink, true
	}
	if s, ok := ecs.Get(w, e, component.SpatialAudioSinkComponent.Kind()); ok && s.Sink != nil {
		return s.Sink, true
	}
	return nil, false
}

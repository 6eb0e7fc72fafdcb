package component

import (
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
)

// AudioSource requests playback of a decoded sound file.
var AudioSourceComponent = NewNamedComponent[assets.Handle[*audio.Source]]("AudioSource")

// PitchSource requests playback of a synthesized tone.
var PitchSourceComponent = NewNamedComponent[assets.Handle[*audio.Pitch]]("PitchSource")

var PlaybackSettingsComponent = NewNamedComponent[audio.PlaybackSettings]("PlaybackSettings")

// AudioSink is the live handle of a non-spatial playback. Removing it stops
// the sound.
type AudioSink struct {
	Sink *device.Sink
}

func (s *AudioSink) Dispose() {
	if s != nil && s.Sink != nil {
		s.Sink.Dispose()
	}
}

var AudioSinkComponent = NewNamedComponent[AudioSink]("AudioSink")

// SpatialAudioSink is the live handle of a spatial playback.
type SpatialAudioSink struct {
	Sink *device.SpatialSink
}

func (s *SpatialAudioSink) Dispose() {
	if s != nil && s.Sink != nil {
		s.Sink.Dispose()
	}
}

var SpatialAudioSinkComponent = NewNamedComponent[SpatialAudioSink]("SpatialAudioSink")

// PlaybackDespawnMarker flags an entity to destroy once its sink is empty.
type PlaybackDespawnMarker struct{}

var PlaybackDespawnMarkerComponent = NewNamedComponent[PlaybackDespawnMarker]("PlaybackDespawnMarker")

// PlaybackRemoveMarker flags an entity to lose its audio components once its
// sink is empty.
type PlaybackRemoveMarker struct{}

var PlaybackRemoveMarkerComponent = NewNamedComponent[PlaybackRemoveMarker]("PlaybackRemoveMarker")

// PlaybackCommand is a one-shot control request for an entity's live sink.
// It waits while the entity's request has no sink yet and is dropped when
// there is nothing to control.
type PlaybackCommand struct {
	Play   bool
	Pause  bool
	Toggle bool
	Stop   bool
	// Volume and Speed are applied when non-nil.
	Volume *float64
	Speed  *float64
}

var PlaybackCommandComponent = NewNamedComponent[PlaybackCommand]("PlaybackCommand")

var SpatialListenerComponent = NewNamedComponent[audio.SpatialListener]("SpatialListener")

// GlobalVolumeComponent and SpatialScaleComponent live on the audio settings
// singleton entity.
var GlobalVolumeComponent = NewNamedComponent[audio.GlobalVolume]("GlobalVolume")

var SpatialScaleComponent = NewNamedComponent[audio.SpatialScale]("SpatialScale")

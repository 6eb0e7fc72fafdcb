package system

import (
	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// AddAudioSystems installs the audio settings singleton and the per-frame
// audio passes in order: transform propagation, sink creation, commands,
// emitter sync, listener sync, reaping. Everything after transform
// propagation is skipped while the output is unavailable.
func AddAudioSystems(w *ecs.World, out *device.Output, server *assets.Server, opts AudioOptions) {
	EnsureAudioSettings(w, opts)

	w.AddSystem(NewTransformSystem())

	set := ecs.NewScheduler(
		NewPlaybackSystem[*audio.Source](out, server.Sources, component.AudioSourceComponent),
		NewPlaybackSystem[*audio.Pitch](out, server.Pitches, component.PitchSourceComponent),
		NewPlaybackCommandSystem(),
		NewEmitterSyncSystem(),
		NewListenerSyncSystem(),
		NewCleanupSystem[*audio.Source](out, component.AudioSourceComponent),
		NewCleanupSystem[*audio.Pitch](out, component.PitchSourceComponent),
	).RunIf(func(*ecs.World) bool { return out.Available() })
	w.AddScheduler(set)
}

package system

import (
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/ecs"
)

const (
	EventPlaybackStarted  = "playback_started"
	EventPlaybackFinished = "playback_finished"
)

// PlaybackEvent is the Data of playback events.
type PlaybackEvent struct {
	Entity  ecs.Entity
	Asset   string
	Mode    audio.PlaybackMode
	Spatial bool
	// Despawned is set on finish events when the entity was destroyed.
	Despawned bool
}

func pushPlaybackEvent(w *ecs.World, kind string, evt PlaybackEvent) {
	w.Events().Push(ecs.Event{Type: kind, Data: evt})
}

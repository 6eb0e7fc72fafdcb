package system

import (
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

// PlaybackCommandSystem applies PlaybackCommand components to live sinks.
// A command on an entity whose request has not produced a sink yet waits
// for it; commands on entities with nothing to control are dropped.
type PlaybackCommandSystem struct{}

func NewPlaybackCommandSystem() *PlaybackCommandSystem {
	return &PlaybackCommandSystem{}
}

func (a *PlaybackCommandSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	var done []ecs.Entity
	ecs.ForEach(w, component.PlaybackCommandComponent.Kind(), func(e ecs.Entity, cmd *component.PlaybackCommand) {
		sink, ok := sinkOf(w, e)
		if !ok {
			if PlaybackStatus(w, e) != PlaybackRequested {
				done = append(done, e)
			}
			return
		}

		if cmd.Volume != nil {
			sink.SetVolume(*cmd.Volume)
		}
		if cmd.Speed != nil {
			sink.SetSpeed(*cmd.Speed)
		}
		if cmd.Play {
			sink.Play()
		}
		if cmd.Pause {
			sink.Pause()
		}
		if cmd.Toggle {
			sink.Toggle()
		}
		if cmd.Stop {
			sink.Stop()
		}
		done = append(done, e)
	})

	for _, e := range done {
		ecs.Remove(w, e, component.PlaybackCommandComponent.Kind())
	}
}

// SendPlaybackCommand queues cmd for e's sink.
func SendPlaybackCommand(w *ecs.World, e ecs.Entity, cmd component.PlaybackCommand) error {
	return ecs.Add(w, e, component.PlaybackCommandComponent.Kind(), &cmd)
}

// SendPlaybackCommandAll queues cmd for every entity that has a live sink
// and reports how many were reached.
func SendPlaybackCommandAll(w *ecs.World, cmd component.PlaybackCommand) int {
	if w == nil {
		return 0
	}
	targets := ecs.Query(w, component.AudioSinkComponent.Kind())
	targets = append(targets, ecs.Query(w, component.SpatialAudioSinkComponent.Kind())...)
	sent := 0
	for _, e := range targets {
		if err := SendPlaybackCommand(w, e, cmd); err != nil {
			log.Warnf("Playback command for entity %d: %v", e, err)
			continue
		}
		sent++
	}
	return sent
}

package entity

import (
	"fmt"

	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

func NewMusicPlayer(w *ecs.World, server *assets.Server) (ecs.Entity, error) {
	ent, err := BuildEntity(w, server, "music_player.yaml")
	if err != nil {
		return 0, fmt.Errorf("music player: %w", err)
	}
	return ent, nil
}

func CloneMusicPlayerState(src *component.MusicPlayer) *component.MusicPlayer {
	if src == nil {
		return nil
	}

	trackVolumes := make(map[string]float64, len(src.TrackVolumes))
	for track, volume := range src.TrackVolumes {
		trackVolumes[track] = volume
	}

	return &component.MusicPlayer{
		TrackVolumes:  trackVolumes,
		CurrentTrack:  src.CurrentTrack,
		CurrentVolume: src.CurrentVolume,
		CurrentLoop:   src.CurrentLoop,
		PendingTrack:  src.PendingTrack,
		PendingVolume: src.PendingVolume,
		PendingLoop:   src.PendingLoop,
		PendingActive: src.PendingActive,
		FadeStep:      src.FadeStep,
	}
}

// NewMusicPlayerFromState carries music across a world reset. The song
// entity itself is not copied; the music pass respawns a looping song that
// has no entity.
func NewMusicPlayerFromState(w *ecs.World, server *assets.Server, state *component.MusicPlayer) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("music player: world is nil")
	}
	if state == nil {
		return NewMusicPlayer(w, server)
	}

	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.MusicPlayerComponent.Kind(), CloneMusicPlayerState(state)); err != nil {
		return 0, fmt.Errorf("music player: add component: %w", err)
	}
	return ent, nil
}

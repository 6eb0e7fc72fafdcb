package system

import (
	"strings"

	"github.com/milk9111/spatialaudio/assets"
	"github.com/milk9111/spatialaudio/audio"
	"github.com/milk9111/spatialaudio/audio/device"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

const (
	defaultMusicVolume     = 1.0
	defaultMusicFadeFrames = 30
)

// MusicSystem plays one song at a time. Songs are ordinary playback
// entities (Loop or Despawn) tagged MusicTrack; switching fades the current
// sink out and then spawns the next song.
type MusicSystem struct {
	server *assets.Server
}

func NewMusicSystem(server *assets.Server) *MusicSystem {
	return &MusicSystem{server: server}
}

func RequestMusic(w *ecs.World, track string) {
	RequestMusicWithOptions(w, &component.MusicRequest{Track: track, Volume: 0, Loop: true, FadeOutFrames: defaultMusicFadeFrames})
}

func RequestMusicWithOptions(w *ecs.World, req *component.MusicRequest) {
	if w == nil || req == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.MusicRequestComponent.Kind(), req)
}

func StopMusic(w *ecs.World) {
	RequestMusicWithOptions(w, &component.MusicRequest{FadeOutFrames: defaultMusicFadeFrames})
}

// EnsureMusicPlayer creates the music player singleton if missing.
func EnsureMusicPlayer(w *ecs.World) ecs.Entity {
	if ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind()); ok {
		return ent
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.MusicPlayerComponent.Kind(), &component.MusicPlayer{TrackVolumes: map[string]float64{}})
	return ent
}

func (m *MusicSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	latest, requestEntities := m.consumeLatestRequest(w)
	for _, ent := range requestEntities {
		ecs.DestroyEntity(w, ent)
	}

	ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind())
	if !ok {
		return
	}
	player, ok := ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	if !ok || player == nil {
		return
	}
	if player.TrackVolumes == nil {
		player.TrackVolumes = make(map[string]float64)
	}

	if latest != nil {
		m.applyRequest(w, player, *latest)
	}

	if player.PendingActive {
		m.updateTransition(w, player)
		return
	}

	// a non-looping song despawns itself when it ends
	if player.CurrentTrack != "" {
		if _, ok := m.currentEntity(w); !ok {
			if player.CurrentLoop {
				m.spawnTrack(w, player.CurrentTrack, player.CurrentVolume, true)
			} else {
				player.CurrentTrack = ""
				player.CurrentVolume = 0
			}
		}
	}
}

func (m *MusicSystem) consumeLatestRequest(w *ecs.World) (*component.MusicRequest, []ecs.Entity) {
	var latest *component.MusicRequest
	requestEntities := make([]ecs.Entity, 0)

	for _, ent := range ecs.Query(w, component.MusicRequestComponent.Kind()) {
		requestEntities = append(requestEntities, ent)
		req, ok := ecs.Get(w, ent, component.MusicRequestComponent.Kind())
		if !ok || req == nil {
			continue
		}
		copy := *req
		latest = &copy
	}

	return latest, requestEntities
}

func (m *MusicSystem) applyRequest(w *ecs.World, player *component.MusicPlayer, req component.MusicRequest) {
	track := strings.TrimSpace(req.Track)
	volume := req.Volume
	if volume <= 0 {
		if v, ok := player.TrackVolumes[track]; ok && v > 0 {
			volume = v
		} else {
			volume = defaultMusicVolume
		}
	}
	if volume > 1 {
		volume = 1
	}
	fadeFrames := req.FadeOutFrames
	if fadeFrames <= 0 {
		fadeFrames = defaultMusicFadeFrames
	}

	_, playing := m.currentEntity(w)

	if track == "" {
		player.PendingActive = false
		if !playing {
			player.CurrentTrack = ""
			player.CurrentVolume = 0
			player.CurrentLoop = false
			return
		}
		player.PendingTrack = ""
		player.PendingVolume = 0
		player.PendingLoop = false
		player.PendingActive = true
		player.FadeStep = fadeStep(player.CurrentVolume, fadeFrames)
		return
	}

	if !player.PendingActive && player.CurrentTrack == track && playing {
		player.CurrentVolume = volume
		player.TrackVolumes[track] = volume
		if sink, ok := m.currentSink(w); ok {
			sink.SetVolume(audio.Relative(volume).Resolve(globalVolume(w)))
			sink.Play()
		}
		return
	}

	player.PendingTrack = track
	player.PendingVolume = volume
	player.PendingLoop = req.Loop
	player.PendingActive = true
	if !playing {
		m.switchToPending(w, player)
		return
	}
	player.FadeStep = fadeStep(player.CurrentVolume, fadeFrames)
}

func fadeStep(volume float64, frames int) float64 {
	step := volume / float64(frames)
	if step <= 0 {
		return 1
	}
	return step
}

func (m *MusicSystem) updateTransition(w *ecs.World, player *component.MusicPlayer) {
	ent, ok := m.currentEntity(w)
	if !ok {
		m.switchToPending(w, player)
		return
	}

	player.CurrentVolume -= player.FadeStep
	if player.CurrentVolume > 0 {
		if sink, ok := m.currentSink(w); ok {
			sink.SetVolume(audio.Relative(player.CurrentVolume).Resolve(globalVolume(w)))
		}
		return
	}

	player.CurrentVolume = 0
	ecs.DestroyEntity(w, ent)
	player.CurrentTrack = ""
	player.CurrentLoop = false
	m.switchToPending(w, player)
}

func (m *MusicSystem) switchToPending(w *ecs.World, player *component.MusicPlayer) {
	if !player.PendingActive {
		return
	}

	reqTrack := strings.TrimSpace(player.PendingTrack)
	reqVolume := player.PendingVolume
	reqLoop := player.PendingLoop

	player.PendingTrack = ""
	player.PendingVolume = 0
	player.PendingLoop = false
	player.PendingActive = false
	player.FadeStep = 0

	if reqTrack == "" {
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		return
	}

	if m.server == nil {
		log.Warnf("Music %q requested without an asset server", reqTrack)
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		return
	}

	player.CurrentTrack = reqTrack
	player.CurrentVolume = reqVolume
	player.CurrentLoop = reqLoop
	player.TrackVolumes[reqTrack] = reqVolume
	m.spawnTrack(w, reqTrack, reqVolume, reqLoop)
}

func (m *MusicSystem) spawnTrack(w *ecs.World, track string, volume float64, loop bool) {
	settings := audio.Despawn
	if loop {
		settings = audio.Loop
	}
	settings = settings.WithVolume(audio.Relative(volume))

	h := m.server.Load(track)
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.AudioSourceComponent.Kind(), &h)
	_ = ecs.Add(w, ent, component.PlaybackSettingsComponent.Kind(), &settings)
	_ = ecs.Add(w, ent, component.MusicTrackComponent.Kind(), &component.MusicTrack{Track: track})
	log.Debugf("Music %q on %v", track, ent)
}

func (m *MusicSystem) currentEntity(w *ecs.World) (ecs.Entity, bool) {
	return ecs.First(w, component.MusicTrackComponent.Kind())
}

func (m *MusicSystem) currentSink(w *ecs.World) (device.Playback, bool) {
	ent, ok := m.currentEntity(w)
	if !ok {
		return nil, false
	}
	return sinkOf(w, ent)
}

package audio

import (
	"fmt"
	"strings"
)

// PlaybackMode decides how the stream is fed to the sink and what happens to
// the owning entity once the sink runs dry.
type PlaybackMode uint8

const (
	// PlaybackOnce plays the sound once and leaves the sink attached.
	PlaybackOnce PlaybackMode = iota
	// PlaybackLoop repeats the sound forever.
	PlaybackLoop
	// PlaybackDespawn destroys the entity when the sound finishes.
	PlaybackDespawn
	// PlaybackRemove strips the audio components when the sound finishes.
	PlaybackRemove
)

var playbackModeNames = [...]string{"once", "loop", "despawn", "remove"}

func (m PlaybackMode) String() string {
	if int(m) < len(playbackModeNames) {
		return playbackModeNames[m]
	}
	return fmt.Sprintf("PlaybackMode(%d)", m)
}

// ParsePlaybackMode accepts the names printed by String, case-insensitively.
func ParsePlaybackMode(s string) (PlaybackMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range playbackModeNames {
		if n == name {
			return PlaybackMode(i), nil
		}
	}
	return PlaybackOnce, fmt.Errorf("audio: unknown playback mode %q", s)
}

func (m PlaybackMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PlaybackMode) UnmarshalText(b []byte) error {
	parsed, err := ParsePlaybackMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PlaybackSettings describe how a sound starts. They are read once, when the
// sink is created; changing them afterwards has no effect on the playing
// sound. Use the sink components to control playback in flight.
type PlaybackSettings struct {
	Mode   PlaybackMode
	Volume Volume
	// Speed multiplies the playback rate. Must be positive.
	Speed float64
	// Paused creates the sink paused, for deferred playback.
	Paused bool
	// Spatial pans the sound between the listener's ears.
	Spatial bool
}

var (
	Once    = PlaybackSettings{Mode: PlaybackOnce, Volume: Volume{Level: 1}, Speed: 1}
	Loop    = PlaybackSettings{Mode: PlaybackLoop, Volume: Volume{Level: 1}, Speed: 1}
	Despawn = PlaybackSettings{Mode: PlaybackDespawn, Volume: Volume{Level: 1}, Speed: 1}
	Remove  = PlaybackSettings{Mode: PlaybackRemove, Volume: Volume{Level: 1}, Speed: 1}
)

// DefaultPlaybackSettings plays once and keeps the entity and sink around.
func DefaultPlaybackSettings() PlaybackSettings {
	return Once
}

func (s PlaybackSettings) WithPaused() PlaybackSettings {
	s.Paused = true
	return s
}

func (s PlaybackSettings) WithVolume(v Volume) PlaybackSettings {
	s.Volume = v
	return s
}

func (s PlaybackSettings) WithSpeed(speed float64) PlaybackSettings {
	s.Speed = speed
	return s
}

func (s PlaybackSettings) WithSpatial(spatial bool) PlaybackSettings {
	s.Spatial = spatial
	return s
}

// EffectiveSpeed guards against non-positive speeds, which would stall the
// resampler.
func (s PlaybackSettings) EffectiveSpeed() float64 {
	if s.Speed <= 0 {
		return 1
	}
	return s.Speed
}

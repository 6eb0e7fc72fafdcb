package component

// MusicPlayer stores global music playback state on a dedicated ECS entity.
// The music system mutates this component; no playback state is kept on the system.
// The playing track itself is an ordinary playback entity tagged MusicTrack.
type MusicPlayer struct {
	TrackVolumes map[string]float64

	CurrentTrack  string
	CurrentVolume float64
	CurrentLoop   bool

	PendingTrack  string
	PendingVolume float64
	PendingLoop   bool
	PendingActive bool

	FadeStep float64
}

var MusicPlayerComponent = NewNamedComponent[MusicPlayer]("MusicPlayer")

// MusicTrack tags the playback entity spawned for the current song.
type MusicTrack struct {
	Track string
}

var MusicTrackComponent = NewNamedComponent[MusicTrack]("MusicTrack")

package audio

// VolumeLevel is a non-negative linear gain. 1.0 is unity.
type VolumeLevel float64

// NewVolumeLevel wraps v. Negative levels are a caller bug; they are logged
// and passed through unchanged.
func NewVolumeLevel(v float64) VolumeLevel {
	if v < 0 {
		log.Debugf("Negative volume level %v", v)
	}
	return VolumeLevel(v)
}

// Get returns the level as a plain float.
func (l VolumeLevel) Get() float64 {
	return float64(l)
}

// VolumeKind tags how a Volume combines with the global volume.
type VolumeKind uint8

const (
	// VolumeRelative levels are multiplied by the global volume.
	VolumeRelative VolumeKind = iota
	// VolumeAbsolute levels ignore the global volume.
	VolumeAbsolute
)

func (k VolumeKind) String() string {
	if k == VolumeAbsolute {
		return "absolute"
	}
	return "relative"
}

// Volume is either a relative or an absolute level.
type Volume struct {
	Kind  VolumeKind
	Level VolumeLevel
}

// DefaultVolume is Relative(1.0).
func DefaultVolume() Volume {
	return Relative(1)
}

func Relative(v float64) Volume {
	return Volume{Kind: VolumeRelative, Level: NewVolumeLevel(v)}
}

func Absolute(v float64) Volume {
	return Volume{Kind: VolumeAbsolute, Level: NewVolumeLevel(v)}
}

// Resolve returns the gain a sink is created with.
func (v Volume) Resolve(global GlobalVolume) float64 {
	if v.Kind == VolumeAbsolute {
		return v.Level.Get()
	}
	return v.Level.Get() * global.Volume.Get()
}

// GlobalVolume scales every Relative volume at the moment a sink is created.
// Changing it never affects sinks that already exist.
type GlobalVolume struct {
	Volume VolumeLevel
}

func NewGlobalVolume(v float64) GlobalVolume {
	return GlobalVolume{Volume: NewVolumeLevel(v)}
}

func DefaultGlobalVolume() GlobalVolume {
	return GlobalVolume{Volume: 1}
}

package device

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep/v2"
)

var (
	ErrUnavailable  = errors.New("device: no audio output")
	ErrTooManySinks = errors.New("device: sink limit reached")
)

// Backend selects where mixed audio goes.
type Backend string

const (
	// BackendOto plays through the default system device.
	BackendOto Backend = "oto"
	// BackendManual never touches hardware; the caller pulls samples with
	// Output.Render.
	BackendManual Backend = "manual"
	// BackendNone is always unavailable.
	BackendNone Backend = "none"
)

// ParseBackend accepts the backend names case-insensitively. An empty string
// selects BackendOto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendOto, nil
	case BackendOto, BackendManual, BackendNone:
		return b, nil
	default:
		return "", fmt.Errorf("device: unknown backend %q", s)
	}
}

type Config struct {
	Backend    Backend
	SampleRate int
	// BufferSize is the device buffer length. Zero lets oto choose.
	BufferSize time.Duration
	// MaxSinks caps the number of live sinks. Zero means unlimited.
	MaxSinks int
	// ResampleQuality is passed to beep's resampler, 1 to 64.
	ResampleQuality int
}

func DefaultConfig() Config {
	return Config{
		Backend:         BackendOto,
		SampleRate:      44100,
		BufferSize:      50 * time.Millisecond,
		ResampleQuality: 4,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.ResampleQuality < 1 {
		c.ResampleQuality = def.ResampleQuality
	}
	if c.ResampleQuality > 64 {
		c.ResampleQuality = 64
	}
	return c
}

// Output is the process-wide connection to an audio device. Once opened
// successfully it stays open until the process exits: closing the oto
// context would silence everything, and oto refuses to create a second one.
type Output struct {
	cfg       Config
	format    beep.Format
	mixer     *Mixer
	available bool

	ctx    *oto.Context
	player *oto.Player
}

// Open connects to the configured backend. It never fails; an output that
// could not be opened reports Available() == false and refuses sinks.
func Open(cfg Config) *Output {
	cfg = cfg.withDefaults()
	out := &Output{
		cfg:    cfg,
		format: beep.Format{SampleRate: beep.SampleRate(cfg.SampleRate), NumChannels: 2, Precision: 4},
	}
	out.mixer = newMixer(cfg.MaxSinks)

	switch cfg.Backend {
	case BackendOto:
		if err := out.openOto(); err != nil {
			log.Warnf("No audio device found: %v", err)
			return out
		}
	case BackendManual:
	case BackendNone:
		log.Warnf("No audio device found: output disabled")
		return out
	default:
		log.Warnf("No audio device found: unknown backend %q", cfg.Backend)
		return out
	}

	out.available = true
	log.Infof("Audio output %s at %d Hz", cfg.Backend, cfg.SampleRate)
	return out
}

func (o *Output) openOto() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.cfg.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   o.cfg.BufferSize,
	})
	if err != nil {
		return err
	}
	<-ready
	if err := ctx.Err(); err != nil {
		return err
	}

	o.ctx = ctx
	o.player = ctx.NewPlayer(o.mixer)
	o.player.Play()
	return nil
}

// Available reports whether sinks can be created.
func (o *Output) Available() bool {
	return o != nil && o.available
}

// Format is the format every sink is resampled to.
func (o *Output) Format() beep.Format {
	return o.format
}

func (o *Output) Backend() Backend {
	return o.cfg.Backend
}

// Mixer exposes the mixing stage, mainly for wrapping in other beep
// pipelines.
func (o *Output) Mixer() *Mixer {
	return o.mixer
}

// SinkCount is the number of live sinks.
func (o *Output) SinkCount() int {
	return o.mixer.Len()
}

// NewSink opens a plain stereo sink on the output.
func (o *Output) NewSink() (*Sink, error) {
	if !o.Available() {
		return nil, ErrUnavailable
	}
	s := newSink(o)
	if err := o.mixer.add(s); err != nil {
		return nil, err
	}
	log.Debugf("Opened sink %d", s.id)
	return s, nil
}

// NewSpatialSink opens a sink that pans its input between two ears.
func (o *Output) NewSpatialSink(emitter, leftEar, rightEar mgl64.Vec3) (*SpatialSink, error) {
	if !o.Available() {
		return nil, ErrUnavailable
	}
	s := newSpatialSink(o, emitter, leftEar, rightEar)
	if err := o.mixer.add(s.Sink); err != nil {
		return nil, err
	}
	log.Debugf("Opened spatial sink %d", s.id)
	return s, nil
}

// Render mixes len(samples) frames into samples and returns the number of
// frames written. On an unavailable output it writes silence and returns 0.
func (o *Output) Render(samples [][2]float64) int {
	if !o.Available() {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return 0
	}
	o.mixer.Stream(samples)
	return len(samples)
}

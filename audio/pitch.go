package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
)

// PitchSampleRate is the rate tones are synthesized at.
const PitchSampleRate beep.SampleRate = 44100

// Pitch is a synthesized sine tone asset.
type Pitch struct {
	Frequency float64
	Duration  time.Duration
}

func NewPitch(frequency float64, duration time.Duration) *Pitch {
	return &Pitch{Frequency: frequency, Duration: duration}
}

func (p *Pitch) Format() beep.Format {
	return beep.Format{SampleRate: PitchSampleRate, NumChannels: 1, Precision: 2}
}

func (p *Pitch) Decoder() (beep.Streamer, beep.Format) {
	format := p.Format()
	frames := PitchSampleRate.N(p.Duration)
	tone, err := generators.SineTone(PitchSampleRate, p.Frequency)
	if err != nil {
		log.Warnf("Pitch %vHz: %v; playing silence", p.Frequency, err)
		return beep.Silence(frames), format
	}
	return beep.Take(frames, tone), format
}

package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Decodable is the capability every playable asset kind provides: a fresh
// stream positioned at the start, plus the format it is encoded in. Each call
// must return an independent stream.
type Decodable interface {
	Decoder() (beep.Streamer, beep.Format)
	// Format describes what Decoder returns without building a stream.
	Format() beep.Format
}

// Source is a fully decoded sound held in memory.
type Source struct {
	buffer *beep.Buffer
}

// NewSource wraps an already filled buffer.
func NewSource(buffer *beep.Buffer) *Source {
	return &Source{buffer: buffer}
}

// NewSourceFromFrames copies stereo frames into a new source.
func NewSourceFromFrames(rate beep.SampleRate, frames [][2]float64) *Source {
	buffer := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buffer.Append(&frameStreamer{frames: frames})
	return &Source{buffer: buffer}
}

func (s *Source) Decoder() (beep.Streamer, beep.Format) {
	return s.buffer.Streamer(0, s.buffer.Len()), s.buffer.Format()
}

// Len is the length in frames.
func (s *Source) Len() int {
	return s.buffer.Len()
}

func (s *Source) Duration() time.Duration {
	return s.buffer.Format().SampleRate.D(s.buffer.Len())
}

func (s *Source) Format() beep.Format {
	return s.buffer.Format()
}

// frameStreamer streams a fixed slice of frames once.
type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func (f *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= len(f.frames) {
		return 0, false
	}
	n := copy(samples, f.frames[f.pos:])
	f.pos += n
	return n, true
}

func (f *frameStreamer) Err() error {
	return nil
}

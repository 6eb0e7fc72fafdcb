package device

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recorderBitDepth = 16

// Recorder pulls mixed audio from an output and writes it as a 16-bit PCM
// WAV file. It is meant for the manual backend; pulling from an oto output
// steals frames from the device.
type Recorder struct {
	out    *Output
	enc    *wav.Encoder
	frames [][2]float64
	buf    *goaudio.IntBuffer
	total  int
}

func NewRecorder(out *Output, w io.WriteSeeker) *Recorder {
	rate := int(out.Format().SampleRate)
	return &Recorder{
		out: out,
		enc: wav.NewEncoder(w, rate, recorderBitDepth, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
			SourceBitDepth: recorderBitDepth,
		},
	}
}

// Record renders and writes n frames.
func (r *Recorder) Record(n int) error {
	if n <= 0 {
		return nil
	}
	if !r.out.Available() {
		return ErrUnavailable
	}
	if cap(r.frames) < n {
		r.frames = make([][2]float64, n)
	}
	frames := r.frames[:n]
	r.out.Render(frames)

	data := r.buf.Data[:0]
	for _, f := range frames {
		data = append(data, toPCM16(f[0]), toPCM16(f[1]))
	}
	r.buf.Data = data
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("device: record: %w", err)
	}
	r.total += n
	return nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int {
	return r.total
}

// Close finalizes the WAV header. The underlying writer is not closed.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("device: close recording: %w", err)
	}
	return nil
}

func toPCM16(v float64) int {
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * 32767))
}

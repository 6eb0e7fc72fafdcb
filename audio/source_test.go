package audio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
)

func drain(s beep.Streamer, max int) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 7)
	for len(out) < max {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
	}
	return out
}

func TestSourceDecoderIsIndependent(t *testing.T) {
	src := NewSourceFromFrames(100, [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}})
	if src.Len() != 3 || src.Duration() != 30*time.Millisecond {
		t.Fatalf("len=%d duration=%v", src.Len(), src.Duration())
	}
	a, format := src.Decoder()
	if format.SampleRate != 100 || format.NumChannels != 2 {
		t.Fatalf("unexpected format %+v", format)
	}
	first := drain(a, 10)
	b, _ := src.Decoder()
	second := drain(b, 10)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 frames each, got %d and %d", len(first), len(second))
	}
}

func TestRepeatLoops(t *testing.T) {
	src := NewSourceFromFrames(100, [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}})
	frames := drain(Repeat(src), 10)
	if len(frames) < 10 {
		t.Fatalf("repeat stopped after %d frames", len(frames))
	}
	for i, f := range frames[:10] {
		if want := float64(i%3+1) / 10; math.Abs(f[0]-want) > 1e-3 {
			t.Fatalf("frame %d = %v, want %v", i, f[0], want)
		}
	}
}

type emptyDecodable struct{}

func (e emptyDecodable) Decoder() (beep.Streamer, beep.Format) {
	return beep.Silence(0), e.Format()
}

func (emptyDecodable) Format() beep.Format {
	return beep.Format{SampleRate: 100, NumChannels: 2}
}

func TestRepeatEmptySourceEnds(t *testing.T) {
	frames := drain(Repeat(emptyDecodable{}), 100)
	if len(frames) != 0 {
		t.Fatalf("expected no frames, got %d", len(frames))
	}
}

func TestPitchDecoderLength(t *testing.T) {
	p := NewPitch(440, 100*time.Millisecond)
	s, format := p.Decoder()
	if format.SampleRate != PitchSampleRate {
		t.Fatalf("rate = %v", format.SampleRate)
	}
	frames := drain(s, 100000)
	if want := PitchSampleRate.N(100 * time.Millisecond); len(frames) != want {
		t.Fatalf("got %d frames, want %d", len(frames), want)
	}
	var peak float64
	for _, f := range frames {
		peak = math.Max(peak, math.Abs(f[0]))
	}
	if peak < 0.5 {
		t.Fatalf("tone too quiet: peak %v", peak)
	}
}

func TestPitchInvalidFrequencyIsSilent(t *testing.T) {
	// Above Nyquist the generator refuses the tone.
	s, _ := NewPitch(float64(PitchSampleRate), 10*time.Millisecond).Decoder()
	for _, f := range drain(s, 10000) {
		if f != [2]float64{} {
			t.Fatalf("expected silence, got %v", f)
		}
	}
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := Decode("clip.xyz", []byte("data"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDecodeCorruptData(t *testing.T) {
	for _, name := range []string{"a.wav", "a.mp3", "a.ogg", "a.aiff", "a.flac"} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(name, []byte("not audio at all")); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestBuiltinFormats(t *testing.T) {
	for _, name := range []string{"a.wav", "a.MP3", "a.ogg", "a.oga", "a.aif", "a.aiff", "a.flac"} {
		if !Supported(name) {
			t.Fatalf("%s should be supported", name)
		}
	}
}

func TestRegisterFormat(t *testing.T) {
	RegisterFormat(".RAW", func(data []byte) (*Source, error) {
		frames := make([][2]float64, len(data))
		return NewSourceFromFrames(8000, frames), nil
	})
	if !Supported("clip.raw") {
		t.Fatalf("raw should be supported")
	}
	src, err := Decode("clip.RAW", []byte{1, 2, 3})
	if err != nil || src.Len() != 3 {
		t.Fatalf("decode raw: %v", err)
	}
}

func TestSourceFromS16Stereo(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xc0} // 16384, -16384
	src, err := sourceFromS16Stereo(100, pcm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frames := drain(func() beep.Streamer { s, _ := src.Decoder(); return s }(), 10)
	if len(frames) != 1 || math.Abs(frames[0][0]-0.5) > 1e-3 || math.Abs(frames[0][1]+0.5) > 1e-3 {
		t.Fatalf("unexpected frames %v", frames)
	}
	if _, err := sourceFromS16Stereo(100, nil); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
}

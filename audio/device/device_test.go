package device

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep/v2"
)

type constStreamer struct {
	value  float64
	remain int
}

func (c *constStreamer) Stream(samples [][2]float64) (int, bool) {
	if c.remain <= 0 {
		return 0, false
	}
	n := min(len(samples), c.remain)
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{c.value, c.value}
	}
	c.remain -= n
	return n, true
}

func (c *constStreamer) Err() error { return nil }

func newManual(t *testing.T, cfg Config) *Output {
	t.Helper()
	cfg.Backend = BackendManual
	out := Open(cfg)
	if !out.Available() {
		t.Fatalf("manual output not available")
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestOpenNoneIsUnavailable(t *testing.T) {
	out := Open(Config{Backend: BackendNone})
	if out.Available() {
		t.Fatalf("expected unavailable output")
	}
	if _, err := out.NewSink(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := out.NewSpatialSink(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	buf := [][2]float64{{1, 1}}
	if n := out.Render(buf); n != 0 || buf[0] != [2]float64{} {
		t.Fatalf("expected silence, got n=%d buf=%v", n, buf)
	}
}

func TestParseBackend(t *testing.T) {
	cases := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{in: "", want: BackendOto},
		{in: "OTO", want: BackendOto},
		{in: "manual", want: BackendManual},
		{in: " none ", want: BackendNone},
		{in: "alsa", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBackend(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestSinkPlaysAtVolumeAndDrains(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100})
	sink, err := out.NewSink()
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	sink.SetVolume(0.5)
	sink.Append(&constStreamer{value: 0.5, remain: 100}, beep.Format{SampleRate: 100, NumChannels: 2})

	buf := make([][2]float64, 32)
	out.Render(buf)
	if !near(buf[16][0], 0.25) || !near(buf[16][1], 0.25) {
		t.Fatalf("expected 0.25 mid-stream, got %v", buf[16])
	}
	if sink.Empty() {
		t.Fatalf("sink emptied too early")
	}

	out.Render(make([][2]float64, 256))
	if !sink.Empty() {
		t.Fatalf("expected sink to drain")
	}
	out.Render(buf)
	for i, f := range buf {
		if f != [2]float64{} {
			t.Fatalf("frame %d not silent after drain: %v", i, f)
		}
	}
}

func TestPausedSinkHoldsPosition(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100})
	sink, _ := out.NewSink()
	sink.Pause()
	sink.Append(&constStreamer{value: 1, remain: 10}, beep.Format{SampleRate: 100, NumChannels: 2})

	buf := make([][2]float64, 64)
	out.Render(buf)
	if buf[0] != [2]float64{} {
		t.Fatalf("paused sink produced audio: %v", buf[0])
	}
	if sink.Empty() {
		t.Fatalf("paused sink must not be empty")
	}

	sink.Toggle()
	if sink.IsPaused() {
		t.Fatalf("toggle should resume")
	}
	out.Render(buf)
	if !sink.Empty() {
		t.Fatalf("expected sink to drain once resumed")
	}
}

func TestStopAndDispose(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100})
	sink, _ := out.NewSink()
	sink.Append(&constStreamer{value: 1, remain: 1000}, beep.Format{SampleRate: 100, NumChannels: 2})
	sink.Stop()
	if !sink.Empty() {
		t.Fatalf("stop should empty the queue")
	}

	if out.SinkCount() != 1 {
		t.Fatalf("expected 1 sink, got %d", out.SinkCount())
	}
	sink.Dispose()
	sink.Dispose()
	if out.SinkCount() != 0 {
		t.Fatalf("expected disposed sink to detach, got %d", out.SinkCount())
	}
	sink.Append(&constStreamer{value: 1, remain: 10}, beep.Format{SampleRate: 100, NumChannels: 2})
	if !sink.Empty() {
		t.Fatalf("disposed sink accepted audio")
	}
}

func TestMaxSinks(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100, MaxSinks: 1})
	first, err := out.NewSink()
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	if _, err := out.NewSpatialSink(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}); !errors.Is(err, ErrTooManySinks) {
		t.Fatalf("expected ErrTooManySinks, got %v", err)
	}
	first.Dispose()
	if _, err := out.NewSink(); err != nil {
		t.Fatalf("sink after dispose: %v", err)
	}
}

func TestSpeedDrainsFaster(t *testing.T) {
	cases := []struct {
		name      string
		speed     float64
		wantEmpty bool
	}{
		{name: "normal", speed: 1, wantEmpty: false},
		{name: "double", speed: 2, wantEmpty: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := newManual(t, Config{SampleRate: 100})
			sink, _ := out.NewSink()
			sink.SetSpeed(tc.speed)
			sink.Append(&constStreamer{value: 1, remain: 100}, beep.Format{SampleRate: 100, NumChannels: 2})
			out.Render(make([][2]float64, 75))
			if sink.Empty() != tc.wantEmpty {
				t.Fatalf("empty = %v, want %v", sink.Empty(), tc.wantEmpty)
			}
		})
	}
}

func TestSetSpeedIgnoresNonPositive(t *testing.T) {
	out := newManual(t, Config{})
	sink, _ := out.NewSink()
	sink.SetSpeed(0)
	sink.SetSpeed(-2)
	if sink.Speed() != 1 {
		t.Fatalf("speed = %v, want 1", sink.Speed())
	}
}

func TestSpatialGains(t *testing.T) {
	left := mgl64.Vec3{-1, 0, 0}
	right := mgl64.Vec3{1, 0, 0}
	cases := []struct {
		name    string
		emitter mgl64.Vec3
		check   func(g [2]float64) bool
	}{
		{
			name:    "at left ear",
			emitter: left,
			check:   func(g [2]float64) bool { return near(g[0], 1) && g[0] > g[1] },
		},
		{
			name:    "right side",
			emitter: mgl64.Vec3{3, 0, 0},
			check:   func(g [2]float64) bool { return g[1] > g[0] },
		},
		{
			name:    "centered",
			emitter: mgl64.Vec3{0, 0, 0},
			check:   func(g [2]float64) bool { return near(g[0], g[1]) && near(g[0], 0.75) },
		},
		{
			name:    "far away",
			emitter: mgl64.Vec3{0, 100, 0},
			check:   func(g [2]float64) bool { return g[0] < 0.001 && g[1] < 0.001 },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := spatialGains(tc.emitter, left, right)
			if !tc.check(g) {
				t.Fatalf("unexpected gains %v", g)
			}
		})
	}
}

func TestSpatialGainsCoincidentEars(t *testing.T) {
	g := spatialGains(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{})
	if !near(g[0], 0.75) || !near(g[1], 0.75) {
		t.Fatalf("unexpected gains %v", g)
	}
}

func TestSpatialSinkPans(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100})
	sink, err := out.NewSpatialSink(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0})
	if err != nil {
		t.Fatalf("NewSpatialSink: %v", err)
	}
	sink.Append(&constStreamer{value: 1, remain: 1000}, beep.Format{SampleRate: 100, NumChannels: 2})

	buf := make([][2]float64, 16)
	out.Render(buf)
	if !(buf[8][0] > buf[8][1]) {
		t.Fatalf("expected left-heavy frame, got %v", buf[8])
	}

	sink.SetEmitterPosition(mgl64.Vec3{1, 0, 0})
	out.Render(buf)
	if !(buf[8][1] > buf[8][0]) {
		t.Fatalf("expected right-heavy frame, got %v", buf[8])
	}

	sink.SetEarsPosition(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{3, 0, 0})
	l, r := sink.Gains()
	if !(l > r) {
		t.Fatalf("expected left gain to dominate after moving ears, got %v %v", l, r)
	}
}

func TestMixerReadFloat32(t *testing.T) {
	out := newManual(t, Config{SampleRate: 100})
	sink, _ := out.NewSink()
	sink.Append(&constStreamer{value: 0.5, remain: 1000}, beep.Format{SampleRate: 100, NumChannels: 2})

	p := make([]byte, 8*16+3)
	n, err := out.Mixer().Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	v := math.Float32frombits(uint32(p[64]) | uint32(p[65])<<8 | uint32(p[66])<<16 | uint32(p[67])<<24)
	if math.Abs(float64(v)-0.5) > 1e-5 {
		t.Fatalf("expected 0.5, got %v", v)
	}
	for _, b := range p[8*16:] {
		if b != 0 {
			t.Fatalf("trailing bytes not zeroed")
		}
	}
}

func TestRecorderWritesWAV(t *testing.T) {
	out := newManual(t, Config{SampleRate: 8000})
	sink, _ := out.NewSink()
	sink.Append(&constStreamer{value: 0.25, remain: 400}, beep.Format{SampleRate: 8000, NumChannels: 2})

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := NewRecorder(out, f)
	if err := rec.Record(200); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Record(200); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	if rec.Frames() != 400 {
		t.Fatalf("frames = %d", rec.Frames())
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() < 400*4 {
		t.Fatalf("wav too small: %d bytes", info.Size())
	}
}

func TestToPCM16Clamps(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{in: 0, want: 0},
		{in: 1, want: 32767},
		{in: 2, want: 32767},
		{in: -3, want: -32767},
	}
	for _, tc := range cases {
		if got := toPCM16(tc.in); got != tc.want {
			t.Fatalf("toPCM16(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

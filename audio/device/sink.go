package device

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Playback is the control surface shared by plain and spatial sinks.
type Playback interface {
	Append(s beep.Streamer, format beep.Format)
	Volume() float64
	SetVolume(v float64)
	Speed() float64
	SetSpeed(speed float64)
	Play()
	Pause()
	IsPaused() bool
	Toggle()
	Stop()
	Empty() bool
	Dispose()
}

var nextSinkID atomic.Uint64

type queued struct {
	rate      beep.SampleRate
	resampler *beep.Resampler
}

// Sink is a queue of streams played one after another at a shared volume and
// speed. All methods are safe to call while the device is pulling samples.
type Sink struct {
	id  uint64
	out *Output

	mu       sync.Mutex
	queue    []*queued
	volume   float64
	speed    float64
	paused   bool
	disposed bool
	pan      func(frames [][2]float64)
}

var _ Playback = (*Sink)(nil)

func newSink(out *Output) *Sink {
	return &Sink{
		id:     nextSinkID.Add(1),
		out:    out,
		volume: 1,
		speed:  1,
	}
}

func (s *Sink) ID() uint64 {
	return s.id
}

// Append queues s behind whatever is already playing. The stream is
// converted from format's sample rate to the output's.
func (s *Sink) Append(stream beep.Streamer, format beep.Format) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	rate := format.SampleRate
	if rate <= 0 {
		rate = s.out.format.SampleRate
	}
	q := &queued{rate: rate}
	q.resampler = beep.ResampleRatio(s.out.cfg.ResampleQuality, s.ratio(rate), stream)
	s.queue = append(s.queue, q)
}

// ratio must be called with mu held.
func (s *Sink) ratio(rate beep.SampleRate) float64 {
	return float64(rate) / float64(s.out.format.SampleRate) * s.speed
}

func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Sink) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *Sink) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetSpeed changes the playback rate of the current and queued streams.
// Non-positive speeds are ignored.
func (s *Sink) SetSpeed(speed float64) {
	if speed <= 0 {
		log.Debugf("Sink %d: ignoring speed %v", s.id, speed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
	for _, q := range s.queue {
		q.resampler.SetRatio(s.ratio(q.rate))
	}
}

func (s *Sink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *Sink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *Sink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Sink) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
}

// Stop drops every queued stream. The sink stays usable.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
}

// Empty reports whether everything appended has been played (or stopped).
// A paused sink with queued audio is not empty.
func (s *Sink) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

// Len is the number of queued streams, including the one playing.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Dispose stops the sink and detaches it from the output. Safe to call more
// than once.
func (s *Sink) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.queue = nil
	s.mu.Unlock()

	s.out.mixer.remove(s)
	log.Debugf("Disposed sink %d", s.id)
}

func (s *Sink) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// mixInto adds this sink's next len(dst) frames to dst, using scratch as
// working space. Paused sinks do not advance.
func (s *Sink) mixInto(dst, scratch [][2]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.disposed || len(s.queue) == 0 {
		return
	}

	filled := 0
	for filled < len(scratch) && len(s.queue) > 0 {
		head := s.queue[0]
		n, ok := head.resampler.Stream(scratch[filled:])
		filled += n
		if !ok || n == 0 {
			if err := head.resampler.Err(); err != nil {
				log.Warnf("Sink %d: stream error: %v", s.id, err)
			}
			s.queue[0] = nil
			s.queue = s.queue[1:]
		}
	}
	frames := scratch[:filled]
	if s.pan != nil {
		s.pan(frames)
	}
	for i := range frames {
		dst[i][0] += frames[i][0] * s.volume
		dst[i][1] += frames[i][1] * s.volume
	}
}

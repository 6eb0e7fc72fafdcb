package device

import (
	"encoding/binary"
	"math"
	"sync"
)

// Mixer sums every live sink into one stereo stream. It implements both
// beep.Streamer, for offline rendering, and io.Reader producing interleaved
// float32 little-endian frames, which is what the oto player pulls.
type Mixer struct {
	maxSinks int

	mu      sync.Mutex
	sinks   []*Sink
	scratch [][2]float64
	frames  [][2]float64
}

func newMixer(maxSinks int) *Mixer {
	return &Mixer{maxSinks: maxSinks}
}

func (m *Mixer) add(s *Sink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxSinks > 0 && len(m.sinks) >= m.maxSinks {
		return ErrTooManySinks
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Mixer) remove(s *Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.sinks {
		if other == s {
			m.sinks = append(m.sinks[:i], m.sinks[i+1:]...)
			return
		}
	}
}

// Len is the number of attached sinks.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}

// Stream always fills samples; silence when nothing is playing.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixLocked(samples)
	return len(samples), true
}

func (m *Mixer) Err() error {
	return nil
}

func (m *Mixer) mixLocked(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if cap(m.scratch) < len(samples) {
		m.scratch = make([][2]float64, len(samples))
	}
	scratch := m.scratch[:len(samples)]
	for _, s := range m.sinks {
		s.mixInto(samples, scratch)
	}
}

// Read renders len(p)/8 frames as float32 little-endian stereo. Trailing
// bytes that do not fill a frame are zeroed.
func (m *Mixer) Read(p []byte) (int, error) {
	const frameBytes = 8
	n := len(p) / frameBytes

	m.mu.Lock()
	if cap(m.frames) < n {
		m.frames = make([][2]float64, n)
	}
	frames := m.frames[:n]
	m.mixLocked(frames)
	m.mu.Unlock()

	for i, f := range frames {
		binary.LittleEndian.PutUint32(p[i*frameBytes:], math.Float32bits(float32(f[0])))
		binary.LittleEndian.PutUint32(p[i*frameBytes+4:], math.Float32bits(float32(f[1])))
	}
	for i := n * frameBytes; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

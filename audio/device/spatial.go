package device

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SpatialSink is a Sink whose input is folded to mono and then split between
// a left and a right ear according to where the emitter sits relative to
// them.
type SpatialSink struct {
	*Sink

	emitter  mgl64.Vec3
	leftEar  mgl64.Vec3
	rightEar mgl64.Vec3
	gains    [2]float64
}

var _ Playback = (*SpatialSink)(nil)

func newSpatialSink(out *Output, emitter, leftEar, rightEar mgl64.Vec3) *SpatialSink {
	s := &SpatialSink{
		Sink:     newSink(out),
		emitter:  emitter,
		leftEar:  leftEar,
		rightEar: rightEar,
	}
	s.gains = spatialGains(emitter, leftEar, rightEar)
	s.pan = s.applyPan
	return s
}

// SetEmitterPosition moves the sound source.
func (s *SpatialSink) SetEmitterPosition(p mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter = p
	s.gains = spatialGains(s.emitter, s.leftEar, s.rightEar)
}

// SetEarsPosition moves both ears.
func (s *SpatialSink) SetEarsPosition(left, right mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leftEar = left
	s.rightEar = right
	s.gains = spatialGains(s.emitter, s.leftEar, s.rightEar)
}

func (s *SpatialSink) EmitterPosition() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitter
}

func (s *SpatialSink) EarsPosition() (left, right mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leftEar, s.rightEar
}

// Gains returns the current left and right ear gains.
func (s *SpatialSink) Gains() (left, right float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gains[0], s.gains[1]
}

// applyPan runs under the sink lock.
func (s *SpatialSink) applyPan(frames [][2]float64) {
	for i := range frames {
		mono := (frames[i][0] + frames[i][1]) / 2
		frames[i][0] = mono * s.gains[0]
		frames[i][1] = mono * s.gains[1]
	}
}

// spatialGains combines inverse-square distance attenuation with an
// inter-aural factor in [0.5, 1] that favours the nearer ear.
func spatialGains(emitter, leftEar, rightEar mgl64.Vec3) [2]float64 {
	dl := emitter.Sub(leftEar).Len()
	dr := emitter.Sub(rightEar).Len()
	maxDiff := leftEar.Sub(rightEar).Len()
	return [2]float64{
		attenuation(dl) * interaural(dl, dr, maxDiff),
		attenuation(dr) * interaural(dr, dl, maxDiff),
	}
}

func attenuation(d float64) float64 {
	if d == 0 {
		return 1
	}
	return math.Min(1/(d*d), 1)
}

// interaural is the factor for the ear at distance this, given the other
// ear is at distance other.
func interaural(this, other, maxDiff float64) float64 {
	if maxDiff == 0 {
		return 0.75
	}
	return math.Min(((other-this)/maxDiff+1)/4+0.5, 1)
}

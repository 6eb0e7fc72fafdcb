package audio

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/spatialaudio/common"
)

// DefaultEarGap is the distance between the ears of a default listener, in
// world units.
const DefaultEarGap = 4.0

// SpatialListener places two ears relative to the listener's world
// transform.
type SpatialListener struct {
	LeftEarOffset  mgl64.Vec3
	RightEarOffset mgl64.Vec3
}

// NewSpatialListener puts the ears gap apart on the X axis, centred on the
// listener.
func NewSpatialListener(gap float64) SpatialListener {
	return SpatialListener{
		LeftEarOffset:  mgl64.Vec3{-gap / 2, 0, 0},
		RightEarOffset: mgl64.Vec3{gap / 2, 0, 0},
	}
}

func DefaultSpatialListener() SpatialListener {
	return NewSpatialListener(DefaultEarGap)
}

// SpatialScale is applied per axis to every emitter and ear position before
// it reaches the panner, so world units can be retuned without touching
// geometry.
type SpatialScale struct {
	Scale mgl64.Vec3
}

func DefaultSpatialScale() SpatialScale {
	return SpatialScale{Scale: mgl64.Vec3{1, 1, 1}}
}

// NewSpatialScale uses the same factor on every axis.
func NewSpatialScale(s float64) SpatialScale {
	return SpatialScale{Scale: mgl64.Vec3{s, s, s}}
}

// NewSpatialScale2D scales x and y and flattens z.
func NewSpatialScale2D(s float64) SpatialScale {
	return SpatialScale{Scale: mgl64.Vec3{s, s, 0}}
}

// Apply scales a world position.
func (s SpatialScale) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return common.MulElem(p, s.Scale)
}

// EarPositions returns the scaled world positions of both ears of a
// listener located at t.
func EarPositions(t common.Transform, l SpatialListener, scale SpatialScale) (left, right mgl64.Vec3) {
	left = scale.Apply(t.TransformPoint(l.LeftEarOffset))
	right = scale.Apply(t.TransformPoint(l.RightEarOffset))
	return left, right
}

// DefaultEarPositions is used when the world has no listener: the default
// ear offsets around the origin, scaled.
func DefaultEarPositions(scale SpatialScale) (left, right mgl64.Vec3) {
	l := DefaultSpatialListener()
	return scale.Apply(l.LeftEarOffset), scale.Apply(l.RightEarOffset)
}

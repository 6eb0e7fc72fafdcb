package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lerp blends a toward b by t.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// MulElem multiplies two vectors component-wise.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Transform is a resolved translation/rotation/scale triple.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// TransformPoint maps a point from local space into the space this
// transform describes: scale, then rotate, then translate.
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	rot := t.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	return t.Translation.Add(rot.Rotate(MulElem(t.Scale, p)))
}

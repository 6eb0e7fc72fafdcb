package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/spatialaudio/common"
)

// Transform is an entity's local placement. Rotation is in radians about the
// Z axis, which is all the 2D demo needs; zero scale components count as 1.
type Transform struct {
	X        float64
	Y        float64
	Z        float64
	ScaleX   float64
	ScaleY   float64
	ScaleZ   float64
	Rotation float64
}

var TransformComponent = NewNamedComponent[Transform]("Transform")

// Resolve converts the local fields to a full transform.
func (t Transform) Resolve() common.Transform {
	scale := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return v
	}
	return common.Transform{
		Translation: mgl64.Vec3{t.X, t.Y, t.Z},
		Rotation:    mgl64.QuatRotate(t.Rotation, mgl64.Vec3{0, 0, 1}),
		Scale:       mgl64.Vec3{scale(t.ScaleX), scale(t.ScaleY), scale(t.ScaleZ)},
	}
}

// GlobalTransform is the world-space transform computed by the transform
// pass. Audio reads only this.
type GlobalTransform struct {
	common.Transform
}

var GlobalTransformComponent = NewNamedComponent[GlobalTransform]("GlobalTransform")

package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/spatialaudio/ecs"
	"github.com/milk9111/spatialaudio/ecs/component"
)

const physicsStep = 1.0 / 60.0

// PhysicsSystem moves bodies through a Chipmunk space inside a walled box
// and writes their positions back to Transform. Audio emitters attached to a
// body therefore drift and bounce around the listener.
type PhysicsSystem struct {
	space    *cp.Space
	entities map[ecs.Entity]*bodyInfo
	walls    []*cp.Shape

	width  float64
	height float64
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

// NewPhysicsSystem creates a gravity-free space bounded by a width x height
// box with its top-left corner at the origin. A zero size leaves it open.
func NewPhysicsSystem(width, height float64) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})

	ps := &PhysicsSystem{
		space:    space,
		entities: make(map[ecs.Entity]*bodyInfo),
		width:    width,
		height:   height,
	}
	ps.buildWalls()
	return ps
}

func (ps *PhysicsSystem) Space() *cp.Space {
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ps.cleanupEntities(w)
	ps.syncEntities(w)
	ps.space.Step(physicsStep)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) buildWalls() {
	if ps.width <= 0 || ps.height <= 0 {
		return
	}
	thickness := 1.0
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: ps.width, Y: 0}},                 // top
		{a: cp.Vector{X: 0, Y: ps.height}, b: cp.Vector{X: ps.width, Y: ps.height}}, // bottom
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: ps.height}},                // left
		{a: cp.Vector{X: ps.width, Y: 0}, b: cp.Vector{X: ps.width, Y: ps.height}},  // right
	}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(0)
		shape.SetElasticity(1)
		ps.space.AddShape(shape)
		ps.walls = append(ps.walls, shape)
	}
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
			if _, ok := ps.entities[e]; ok {
				return
			}
			info := ps.createBody(bodyComp, t)
			ps.entities[e] = info
			bodyComp.Body = info.body
			if len(info.shapes) > 0 {
				bodyComp.Shape = info.shapes[0]
			}
		})
}

func (ps *PhysicsSystem) createBody(bodyComp *component.PhysicsBody, t *component.Transform) *bodyInfo {
	radius := bodyComp.Radius
	if radius <= 0 {
		radius = 8
	}
	pos := cp.Vector{X: t.X, Y: t.Y}

	if bodyComp.Static {
		shape := cp.NewCircle(ps.space.StaticBody, radius, pos)
		shape.SetFriction(bodyComp.Friction)
		shape.SetElasticity(bodyComp.Elasticity)
		ps.space.AddShape(shape)
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(pos)
	body.SetVelocity(bodyComp.VelocityX, bodyComp.VelocityY)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		if transform.X == pos.X && transform.Y == pos.Y {
			continue
		}
		transform.X = pos.X
		transform.Y = pos.Y
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), transform)
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
		}
		if !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}

package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// The physics pass writes the body position back into Transform, so sound
// emitters riding a body move with it.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Static     bool

	VelocityX float64
	VelocityY float64
}

var PhysicsBodyComponent = NewNamedComponent[PhysicsBody]("PhysicsBody")

package component

import "image/color"

// Appearance is how the demo draws an entity: a filled circle.
type Appearance struct {
	Color  color.Color
	Radius float64
}

var AppearanceComponent = NewNamedComponent[Appearance]("Appearance")

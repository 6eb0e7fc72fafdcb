package component

type Name struct {
	Value string
}

var NameComponent = NewNamedComponent[Name]("Name")

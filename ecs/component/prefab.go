package component

// Prefab records which prefab file an entity was built from, so it can be
// rebuilt when the file changes.
type Prefab struct {
	Path string
}

var PrefabComponent = NewNamedComponent[Prefab]("Prefab")

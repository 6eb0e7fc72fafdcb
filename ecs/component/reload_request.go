package component

// ReloadRequest asks the hot reload pass to pick up an edited file: a sound,
// a prefab or a cue script. The watcher spawns a short-lived entity with this
// component per changed path.
type ReloadRequest struct {
	Path string
}

var ReloadRequestComponent = NewNamedComponent[ReloadRequest]("ReloadRequest")

package component

// CueScript attaches a tengo script that schedules sound cues. The script
// runs once per frame and may call play(), tone(), stop() and friends.
type CueScript struct {
	Path string
	// Vars are injected as globals before the first run.
	Vars map[string]any
}

var CueScriptComponent = NewNamedComponent[CueScript]("CueScript")

package session

// Action is delivered to the Coordinator. Completions of remote calls come back as actions too.
type Action interface {
	action()
}

// Inputs are the route and document facts the coordinator reconciles with the sessions.
type Inputs struct {
	ProjectID string
	// PipelineID is empty until the open pipeline is resolved.
	PipelineID string
	// RoutedPipelineID is the pipeline the current route points at.
	RoutedPipelineID string
	// Interactive is false for read-only snapshots such as job runs.
	Interactive bool
	// ReadOnlyReason is a block imposed by the host, for instance while an environment is building.
	ReadOnlyReason string
}

// Render carries the inputs of the latest render.
type Render struct {
	Inputs Inputs
}

// SessionsLoaded replaces the cached sessions with the first full listing of a project. A listing for a project other
// than the open one is dropped.
type SessionsLoaded struct {
	ProjectID string
	Sessions  []Session
}

// SessionUpdated refreshes one pipeline. A nil Session means it has none.
type SessionUpdated struct {
	PipelineID string
	Session    *Session
}

type StartCompleted struct {
	PipelineID string
	Err        error
}

// StopRequested asks to stop the session of the open pipeline.
type StopRequested struct{}

type StopCompleted struct {
	PipelineID string
	Err        error
}

// BuildFinished reports that the environment builds are done.
type BuildFinished struct{}

func (Render) action()         {}
func (SessionsLoaded) action() {}
func (SessionUpdated) action() {}
func (StartCompleted) action() {}
func (StopRequested) action()  {}
func (StopCompleted) action()  {}
func (BuildFinished) action()  {}

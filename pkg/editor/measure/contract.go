package measure

import "time"

// Recorder collects the editor metrics.
type Recorder interface {
	// GraphMutation counts a successful graph mutation.
	GraphMutation(op string)
	// InvariantRejected counts a mutation rejected by the graph invariants.
	InvariantRejected(kind string)
	// LayoutComputed records one auto-arrange run.
	LayoutComputed(elapsed time.Duration, steps int)
	// SessionStart counts a session start attempt by outcome.
	SessionStart(outcome string)
	// LogChunk counts a push event rendered by a terminal, by action.
	LogChunk(action string)
}

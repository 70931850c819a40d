package model

// RunStatus is the execution status of a step in the latest pipeline run.
type RunStatus string

const (
	RunStatusIdle    RunStatus = ""
	RunStatusPending RunStatus = "PENDING"
	RunStatusStarted RunStatus = "STARTED"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailure RunStatus = "FAILURE"
	RunStatusAborted RunStatus = "ABORTED"
)

// Step is a node of the pipeline graph, bound to a file.
type Step struct {
	ID          string
	Title       string
	FilePath    string
	Environment string
	Position    Point
	// IncomingConnections lists the source step ids, in the order the connections were made.
	IncomingConnections []string
	Hidden              bool
	FileMissing         bool
	RunStatus           RunStatus
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	cp := *s
	cp.IncomingConnections = append([]string(nil), s.IncomingConnections...)

	return &cp
}

// Connection is a directed edge between two steps.
type Connection struct {
	Source string
	Target string
}

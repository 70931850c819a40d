package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrGraphInvariant is matched by every error raised because a mutation would break the graph invariants.
	ErrGraphInvariant     = errors.New("graph invariant violated")
	ErrStepAlreadyExists  = errors.New("step already exists")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrPathMustBeSet      = errors.New("file path must be set")
)

// CycleError is returned when a connection would close a cycle, self loops included.
type CycleError struct {
	Source, Target string
	cause          error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("connection %s -> %s would create a cycle", e.Source, e.Target)
}

func (e *CycleError) Is(target error) bool { return target == ErrGraphInvariant }

func (e *CycleError) Unwrap() error { return e.cause }

// DuplicateConnectionError is returned when the connection already exists.
type DuplicateConnectionError struct {
	Source, Target string
	cause          error
}

// DuplicateError is the short name of DuplicateConnectionError.
type DuplicateError = DuplicateConnectionError

func (e *DuplicateConnectionError) Error() string {
	return fmt.Sprintf("connection %s -> %s already exists", e.Source, e.Target)
}

func (e *DuplicateConnectionError) Is(target error) bool { return target == ErrGraphInvariant }

func (e *DuplicateConnectionError) Unwrap() error { return e.cause }

// UnknownStepError is returned when an operation references a step that is not in the graph.
type UnknownStepError struct {
	ID    string
	cause error
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q", e.ID)
}

func (e *UnknownStepError) Is(target error) bool { return target == ErrGraphInvariant }

func (e *UnknownStepError) Unwrap() error { return e.cause }

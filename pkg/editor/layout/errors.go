package layout

// ComputationError reports a topology the layering could not process. Positions are left untouched.
type ComputationError struct {
	Op    string
	cause error
}

func (e *ComputationError) Error() string {
	if e.cause == nil {
		return "layout: unable to " + e.Op
	}

	return "layout: unable to " + e.Op + ": " + e.cause.Error()
}

func (e *ComputationError) Unwrap() error {
	return e.cause
}

package definition

import "github.com/pkg/errors"

var (
	ErrMissingUUID      = errors.New("pipeline definition without uuid")
	ErrMismatchedStepID = errors.New("step key does not match its uuid")
)

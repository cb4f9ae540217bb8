package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrPrecondition the event cannot be synced as stored (no season, no usable sync source)
	ErrPrecondition = errors.New("sync precondition failed")
	// ErrEventNotFound no event with the requested id
	ErrEventNotFound = errors.New("event not found")
	// ErrUnknownStep force-run of a step name that is not registered
	ErrUnknownStep = errors.New("unknown sync step")
)

// StepError a step failed; the pass it belongs to is abandoned without commit
type StepError struct {
	Step    string
	EventID uuid.UUID
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed for event %s: %v", e.Step, e.EventID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

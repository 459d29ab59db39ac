package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = fmt.Errorf("%w: duplicate key", ErrValidation)
	ErrPaymentRecorded   = errors.New("payment already recorded for reservation")
	ErrInconsistentState = errors.New("inconsistent state")
)

// StepError reports a workflow step that failed after earlier steps had
// already been written. The workflow document keeps the cursor so the
// sequence can be resumed.
type StepError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow %s: step %s: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func (e *StepError) Is(target error) bool { return target == ErrInconsistentState }

// PendingError reports an earlier write sequence that stopped part way
// through. The operation cannot be repeated until that workflow is resumed.
type PendingError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("%v: workflow %s stopped at step %s, resume it", e.Err, e.Workflow, e.Step)
}

func (e *PendingError) Unwrap() error { return e.Err }

// Invalid wraps a message as a validation failure.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

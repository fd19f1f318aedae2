package pipeline

import (
	"errors"
	"fmt"
)

// ClassificationError reports that intent classification was unusable:
// the classification service was unreachable, its output contained no
// parseable object, or the primary intent was missing or unrecognized.
// It is propagated to the caller; the pipeline never fabricates an intent.
type ClassificationError struct {
	Reason string
	err    error
}

func (e *ClassificationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("intent classification failed: %s: %v", e.Reason, e.err)
	}
	return fmt.Sprintf("intent classification failed: %s", e.Reason)
}

func (e *ClassificationError) Unwrap() error { return e.err }

// NewClassificationError wraps an underlying error as a classification failure.
func NewClassificationError(reason string, err error) error {
	return &ClassificationError{Reason: reason, err: err}
}

// IsClassificationError reports whether err is a classification failure.
func IsClassificationError(err error) bool {
	var ce *ClassificationError
	return errors.As(err, &ce)
}

// PlanExecutionError reports that an unexpected crash escaped the executor
// itself, as opposed to a structured provider failure. The message is kept
// in the trace and never shown to the end user.
type PlanExecutionError struct {
	StepID string
	err    error
}

func (e *PlanExecutionError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("plan execution crashed at step %s: %v", e.StepID, e.err)
	}
	return fmt.Sprintf("plan execution crashed: %v", e.err)
}

func (e *PlanExecutionError) Unwrap() error { return e.err }

// IsPlanExecutionError reports whether err is an executor crash.
func IsPlanExecutionError(err error) bool {
	var pe *PlanExecutionError
	return errors.As(err, &pe)
}

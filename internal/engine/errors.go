package engine

import (
	"errors"
	"fmt"
)

// ErrEntityRemoved is returned when the track no longer declares an exercise
// at the commit being reconciled against.
var ErrEntityRemoved = errors.New("exercise removed upstream")

// ReconcileError represents a failure reconciling one exercise.
//
// Reconcile errors include:
//   - Entity removed: the exercise UUID is no longer in the track config
//   - Resolve failed: a reference lookup failed for a reason other than "not found"
//   - Persist failed: the store rejected the update or checkpoint write
//   - Source failed: the content source could not produce a diff or config
//
// A ReconcileError is fatal for its exercise only; sibling exercises in the
// same run are unaffected.
type ReconcileError struct {
	// Code identifies the error category.
	Code ReconcileErrorCode

	// ExerciseUUID identifies the affected exercise.
	ExerciseUUID string

	// Slug is the exercise slug as persisted before the run.
	Slug string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// ReconcileErrorCode categorizes reconcile errors.
type ReconcileErrorCode string

const (
	// ErrCodeEntityRemoved indicates the exercise was removed upstream.
	ErrCodeEntityRemoved ReconcileErrorCode = "ENTITY_REMOVED"

	// ErrCodeResolveFailed indicates a reference resolver failure.
	ErrCodeResolveFailed ReconcileErrorCode = "RESOLVE_FAILED"

	// ErrCodePersistFailed indicates the store write failed.
	ErrCodePersistFailed ReconcileErrorCode = "PERSIST_FAILED"

	// ErrCodeSourceFailed indicates the content source failed.
	ErrCodeSourceFailed ReconcileErrorCode = "SOURCE_FAILED"
)

// Error implements the error interface.
func (e *ReconcileError) Error() string {
	msg := fmt.Sprintf("%s: %s (exercise=%s", e.Code, e.Message, e.ExerciseUUID)
	if e.Slug != "" {
		msg += ", slug=" + e.Slug
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// IsEntityRemoved returns true if the error reports an exercise removed upstream.
// Uses errors.As to handle wrapped errors.
func IsEntityRemoved(err error) bool {
	var re *ReconcileError
	if errors.As(err, &re) {
		return re.Code == ErrCodeEntityRemoved
	}
	return errors.Is(err, ErrEntityRemoved)
}

// ErrorCode extracts the reconcile error code, or "" for other errors.
func ErrorCode(err error) ReconcileErrorCode {
	var re *ReconcileError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newReconcileError(code ReconcileErrorCode, uuid, slug, message string, err error) *ReconcileError {
	return &ReconcileError{
		Code:         code,
		ExerciseUUID: uuid,
		Slug:         slug,
		Message:      message,
		Err:          err,
	}
}

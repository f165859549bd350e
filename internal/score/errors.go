package score

import (
	"errors"
	"fmt"
)

// DomainError represents a violation of an aggregate invariant.
//
// Domain errors include:
//   - Duplicate event: two structural events of the same kind at one tick
//   - Constraint violation: overlapping same-pitch notes in one voice,
//     zero-duration notes, out-of-range values
//   - Not found: a referenced entity ID does not exist
type DomainError struct {
	// Code identifies the error category.
	Code DomainErrorCode

	// Message is a human-readable description.
	Message string
}

// DomainErrorCode categorizes domain errors.
type DomainErrorCode string

const (
	// ErrCodeDuplicateEvent indicates two events of one kind share a tick.
	ErrCodeDuplicateEvent DomainErrorCode = "DUPLICATE_EVENT"

	// ErrCodeConstraintViolation indicates an aggregate invariant would break.
	ErrCodeConstraintViolation DomainErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeNotFound indicates a referenced entity does not exist.
	ErrCodeNotFound DomainErrorCode = "NOT_FOUND"
)

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConstraintViolation returns true for constraint violation errors.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeConstraintViolation
	}
	return false
}

// IsDuplicateEvent returns true for duplicate event errors.
func IsDuplicateEvent(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeDuplicateEvent
	}
	return false
}

// IsNotFound returns true for missing entity errors.
func IsNotFound(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeNotFound
	}
	return false
}

func newDuplicateEvent(kind string, tick Tick) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateEvent,
		Message: fmt.Sprintf("%s event already exists at tick %d", kind, tick),
	}
}

func newNotFound(kind, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s does not exist", kind, id),
	}
}

func newConstraintViolation(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    ErrCodeConstraintViolation,
		Message: fmt.Sprintf(format, args...),
	}
}
